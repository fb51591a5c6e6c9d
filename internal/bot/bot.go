package bot

import (
	"context"
	"fmt"
	"time"

	tbot "github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/AiTravelerAi/TravelAi/internal/config"
	"github.com/AiTravelerAi/TravelAi/internal/metrics"
)

const getMeTimeout = 10 * time.Second

// Options returns the bot options shared by the polling and webhook services.
func Options(d *Dispatcher, log *zerolog.Logger) []tbot.Option {
	return []tbot.Option{
		tbot.WithDefaultHandler(d.Handle),
		tbot.WithMiddlewares(
			Recover(log),
			Logging(log),
		),
		tbot.WithErrorsHandler(func(err error) {
			log.Error().Err(err).Msg("telegram client error")
		}),
	}
}

// NewBot creates the Telegram client for d and teaches d the bot's own
// username. extra options are appended to Options.
func NewBot(token string, d *Dispatcher, log *zerolog.Logger, extra ...tbot.Option) (*tbot.Bot, error) {
	opts := append(Options(d, log), extra...)

	tg, err := tbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create telegram bot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), getMeTimeout)
	defer cancel()

	me, err := tg.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get bot info: %w", err)
	}
	d.SetUsername(me.Username)

	log.Info().Int64("id", me.ID).Str("username", me.Username).Msg("bot info retrieved")

	return tg, nil
}

// Params for creating a polling bot
type Params struct {
	fx.In

	Config  *config.Bot
	Metrics *metrics.Metrics `optional:"true"`
	Logger  zerolog.Logger
}

type Result struct {
	fx.Out

	Bot *tbot.Bot
}

// New creates the polling bot and starts it with the fx lifecycle.
func New(lc fx.Lifecycle, p Params) (Result, error) {
	log := p.Logger.With().Str("component", "bot").Logger()

	d := NewDispatcher(Texts{
		Start: p.Config.Prompts.Start,
		Help:  p.Config.Prompts.Help,
	}, p.Metrics, &log)

	tg, err := NewBot(p.Config.Token, d, &log)
	if err != nil {
		return Result{}, err
	}

	var cancel context.CancelFunc

	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				var ctx context.Context
				ctx, cancel = context.WithCancel(context.Background())
				log.Info().Msg("bot is running...")
				go tg.Start(ctx)
				return nil
			},
			OnStop: func(context.Context) error {
				log.Info().Msg("stopping telegram bot...")
				if cancel != nil {
					cancel()
				}
				return nil
			},
		},
	)

	return Result{
		Bot: tg,
	}, nil
}

func Module() fx.Option {
	return fx.Module(
		"bot",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(bot *tbot.Bot) {},
		),
	)
}
