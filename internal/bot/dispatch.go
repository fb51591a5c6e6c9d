package bot

import (
	"context"
	"strings"
	"unicode"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/AiTravelerAi/TravelAi/internal/metrics"
)

const (
	CommandStart = "start"
	CommandHelp  = "help"
)

// Kind is the shape of an incoming update.
type Kind string

const (
	KindCommand   Kind = "command"
	KindText      Kind = "text"
	KindUnhandled Kind = "unhandled"
)

// Route is the result of classifying an update. Command is set only for KindCommand.
type Route struct {
	Kind    Kind
	Command string
}

// Classify decides how an update is dispatched. A message is a command when
// its first entity is a bot_command at offset 0. Commands addressed to a
// different bot ("/start@OtherBot") are unhandled; an empty username accepts
// any suffix.
func Classify(update *models.Update, username string) Route {
	if update == nil || update.Message == nil || update.Message.Text == "" {
		return Route{Kind: KindUnhandled}
	}

	msg := update.Message
	if !isCommand(msg) {
		return Route{Kind: KindText}
	}

	cmd, target := commandToken(msg)
	if target != "" && username != "" && !strings.EqualFold(target, username) {
		return Route{Kind: KindUnhandled, Command: cmd}
	}

	return Route{Kind: KindCommand, Command: cmd}
}

func isCommand(msg *models.Message) bool {
	if len(msg.Entities) == 0 {
		return false
	}
	e := msg.Entities[0]
	return e.Type == models.MessageEntityTypeBotCommand && e.Offset == 0
}

// commandToken returns the lowercased command and the optional @username it
// is addressed to.
func commandToken(msg *models.Message) (string, string) {
	text := msg.Text
	if e := msg.Entities[0]; e.Length > 0 && e.Length <= len(text) {
		text = text[:e.Length]
	}

	token := strings.TrimPrefix(text, "/")
	if i := strings.IndexFunc(token, unicode.IsSpace); i >= 0 {
		token = token[:i]
	}

	var target string
	if i := strings.IndexByte(token, '@'); i >= 0 {
		token, target = token[:i], token[i+1:]
	}

	return strings.ToLower(token), target
}

// Sender delivers a reply to Telegram. *tbot.Bot satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, params *tbot.SendMessageParams) (*models.Message, error)
}

// Texts are the fixed replies of the start and help commands.
type Texts struct {
	Start string
	Help  string
}

// Dispatcher routes updates to the start, help and echo handlers.
type Dispatcher struct {
	username string
	texts    Texts
	metrics  *metrics.Metrics
	log      *zerolog.Logger
}

func NewDispatcher(texts Texts, m *metrics.Metrics, log *zerolog.Logger) *Dispatcher {
	return &Dispatcher{texts: texts, metrics: m, log: log}
}

// SetUsername sets the bot's own username used to filter addressed commands.
func (d *Dispatcher) SetUsername(username string) {
	d.username = username
}

// Handle is the go-telegram default handler.
func (d *Dispatcher) Handle(ctx context.Context, b *tbot.Bot, update *models.Update) {
	d.Dispatch(ctx, b, update)
}

// Dispatch classifies update and sends at most one reply through s.
func (d *Dispatcher) Dispatch(ctx context.Context, s Sender, update *models.Update) {
	route := Classify(update, d.username)

	switch route.Kind {
	case KindCommand:
		switch route.Command {
		case CommandStart:
			d.reply(ctx, s, update.Message, d.texts.Start)
		case CommandHelp:
			d.reply(ctx, s, update.Message, d.texts.Help)
		default:
			d.log.Debug().Str("command", route.Command).Msg("unknown command ignored")
			route.Kind = KindUnhandled
		}
	case KindText:
		d.reply(ctx, s, update.Message, update.Message.Text)
	default:
		d.log.Debug().Str("command", route.Command).Msg("update ignored")
	}

	d.metrics.BotUpdate(string(route.Kind))
}

func (d *Dispatcher) reply(ctx context.Context, s Sender, msg *models.Message, text string) {
	_, err := s.SendMessage(ctx, &tbot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   text,
	})
	if err != nil {
		d.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("unable to send reply")
	}
}
