package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"voyager.com/blackjack/cmd/server/app"
	"voyager.com/blackjack/internal/config"
	"voyager.com/blackjack/internal/logging"
	"voyager.com/blackjack/internal/round"
	"voyager.com/blackjack/internal/util"
)

var (
	cmdArgs    arg
	mainLogger = logging.GetZeroLogger("main::main", nil)
)

type arg struct {
	configFile string
	port       uint
}

func init() {
	flag.StringVar(&cmdArgs.configFile, "config", "", "Client config YAML file")
	flag.UintVar(&cmdArgs.port, "port", 8081, "Listen port")
	flag.Parse()
}

func main() {
	os.Exit(run())
}

func run() int {
	logLevel := util.Env.GetZeroLogLogLevel()
	fmt.Printf("Setting log level to %s\n", logLevel)
	zerolog.SetGlobalLevel(logLevel)

	cfg, err := config.Load(cmdArgs.configFile)
	if err != nil {
		mainLogger.Error().Msgf("Error while loading config: %+v", err)
		return 1
	}
	mainLogger.Info().Msgf("Authority: %s, Player: %s", cfg.APIServerURL, cfg.PlayerName)

	store, cleanup, err := round.NewStoreFromConfig(cfg, nil)
	if err != nil {
		mainLogger.Error().Msgf("Error while creating the round store: %+v", err)
		return 1
	}
	defer cleanup()

	mainLogger.Info().Msgf("Listening on port %d", cmdArgs.port)
	if err := app.RunRestServer(cmdArgs.port, store); err != nil {
		mainLogger.Error().Msgf("Rest server stopped: %s", err)
		return 1
	}
	return 0
}
