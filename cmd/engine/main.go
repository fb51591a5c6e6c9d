package main

import (
	"github.com/AiTravelerAi/TravelAi/internal/ai"
	"github.com/AiTravelerAi/TravelAi/internal/config"
	"github.com/AiTravelerAi/TravelAi/internal/engine"
	"github.com/AiTravelerAi/TravelAi/internal/log"
	"github.com/AiTravelerAi/TravelAi/internal/metrics"
	"go.uber.org/fx"
)

func main() {

	fx.New(
		config.EngineModule(),
		metrics.Module(),
		ai.Module(),
		engine.Module(),
		log.Module(),
	).Run()
}
