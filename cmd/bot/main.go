package main

import (
	"github.com/AiTravelerAi/TravelAi/internal/bot"
	"github.com/AiTravelerAi/TravelAi/internal/config"
	"github.com/AiTravelerAi/TravelAi/internal/log"
	"go.uber.org/fx"
)

func main() {

	fx.New(
		config.BotModule(),
		bot.Module(),
		log.Module(),
	).Run()
}
