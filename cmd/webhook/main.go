package main

import (
	"github.com/AiTravelerAi/TravelAi/internal/config"
	"github.com/AiTravelerAi/TravelAi/internal/log"
	"github.com/AiTravelerAi/TravelAi/internal/metrics"
	"github.com/AiTravelerAi/TravelAi/internal/webhook"
	"go.uber.org/fx"
)

func main() {

	fx.New(
		config.WebhookModule(),
		metrics.Module(),
		webhook.Module(),
		log.Module(),
	).Run()
}
