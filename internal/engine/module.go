package engine

import (
	"net/http"

	"github.com/AiTravelerAi/TravelAi/internal/ai"
	"github.com/AiTravelerAi/TravelAi/internal/config"
	"github.com/AiTravelerAi/TravelAi/internal/httpserver"
	"github.com/AiTravelerAi/TravelAi/internal/metrics"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config  *config.Engine
	Service *ai.Service
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

type Result struct {
	fx.Out

	Server *http.Server
}

func New(lc fx.Lifecycle, p Params) (Result, error) {
	h, err := NewHandler(p.Service, p.Metrics)
	if err != nil {
		return Result{}, err
	}

	log := p.Logger.With().Str("component", "engine").Logger()

	r := httpserver.NewRouter(log)
	h.Register(r)
	r.Handle("/metrics", p.Metrics.Handler()).Methods(http.MethodGet)

	return Result{
		Server: httpserver.New(lc, p.Config.Port, r, log),
	}, nil
}

func Module() fx.Option {
	return fx.Module(
		"engine",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(*http.Server) {},
		),
	)
}
