package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/framefolio/framefolio/cmd/framefolio"
	"github.com/framefolio/framefolio/pkg/config"
)

func main() {
	configFile := "config.yaml"
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}

	conf, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to load config file")
	}

	framefolio.Run(conf)
}
