package webhook

import (
	"context"
	"net/http"

	tbot "github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/AiTravelerAi/TravelAi/internal/bot"
	"github.com/AiTravelerAi/TravelAi/internal/config"
	"github.com/AiTravelerAi/TravelAi/internal/httpserver"
	"github.com/AiTravelerAi/TravelAi/internal/metrics"
)

type Params struct {
	fx.In

	Config  *config.Webhook
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

type Result struct {
	fx.Out

	Server *http.Server
}

func New(lc fx.Lifecycle, p Params) (Result, error) {
	log := p.Logger.With().Str("component", "webhook").Logger()

	d := bot.NewDispatcher(bot.Texts{
		Start: p.Config.Prompts.Start,
		Help:  p.Config.Prompts.Help,
	}, p.Metrics, &log)

	// Handlers run on the queue workers, which bound their concurrency.
	tg, err := bot.NewBot(p.Config.Token, d, &log, tbot.WithNotAsyncHandlers())
	if err != nil {
		return Result{}, err
	}

	queue := NewQueue(tg, p.Config.QueueSize, p.Config.Workers, &log)

	// Appended before the server so the server stops first on shutdown.
	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				queue.Start(context.Background())
				log.Info().Int("workers", p.Config.Workers).Msg("update queue started")
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.Info().Msg("draining update queue...")
				return queue.Stop(ctx)
			},
		},
	)

	h, err := NewHandler(queue, tg, p.Config.CallbackURL(), p.Metrics, &log)
	if err != nil {
		return Result{}, err
	}

	r := httpserver.NewRouter(log)
	h.Register(r)
	r.Handle("/metrics", p.Metrics.Handler()).Methods(http.MethodGet)

	return Result{
		Server: httpserver.New(lc, p.Config.Port, r, log),
	}, nil
}

func Module() fx.Option {
	return fx.Module(
		"webhook",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(*http.Server) {},
		),
	)
}
