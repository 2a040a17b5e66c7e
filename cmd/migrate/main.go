package main

import (
	"os"
	"voyage/config"
	"voyage/helper"
	"voyage/shared/logger"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction (up/down/step-up/drop) is required")
	}

	cfg := config.Get()

	if err := helper.Runner(cfg, os.Args[1]); err != nil {
		log.Fatal().Err(err).Str("action", os.Args[1]).Msg("Migration failed")
	}
}
