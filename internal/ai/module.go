package ai

import (
	"github.com/AiTravelerAi/TravelAi/internal/config"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Params for creating an AI service
type Params struct {
	fx.In

	Config *config.Engine
	Logger zerolog.Logger
}

// Result of creating an AI service
type Result struct {
	fx.Out

	Service *Service
}

// New creates a new AI service based on configuration
func New(p Params) (Result, error) {
	querier, err := NewOpenAIQuerier(p.Config.APIKey, p.Config.BaseURL, p.Config.Model)
	if err != nil {
		return Result{}, err
	}

	log := p.Logger.With().Str("component", "ai").Logger()

	return Result{
		Service: NewService(querier, p.Config.Prompts.System, p.Config.Model, &log),
	}, nil
}

// Module provides the AI service
func Module() fx.Option {
	return fx.Module(
		"ai",
		fx.Provide(
			New,
		),
	)
}
