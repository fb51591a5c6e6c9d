package bot

import (
	"context"
	"runtime/debug"
	"time"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// Recover returns middleware that recovers from handler panics.
func Recover(log *zerolog.Logger) tbot.Middleware {
	return func(next tbot.HandlerFunc) tbot.HandlerFunc {
		return func(ctx context.Context, b *tbot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("stack", string(debug.Stack())).
						Msg("panic recovered in handler")
				}
			}()
			next(ctx, b, update)
		}
	}
}

// Logging returns middleware that logs update processing time.
func Logging(log *zerolog.Logger) tbot.Middleware {
	return func(next tbot.HandlerFunc) tbot.HandlerFunc {
		return func(ctx context.Context, b *tbot.Bot, update *models.Update) {
			start := time.Now()

			var chatID int64
			if update.Message != nil {
				chatID = update.Message.Chat.ID
			}

			next(ctx, b, update)

			log.Debug().
				Int64("update_id", update.ID).
				Bool("message", update.Message != nil).
				Int64("chat_id", chatID).
				Dur("duration", time.Since(start)).
				Msg("update processed")
		}
	}
}
