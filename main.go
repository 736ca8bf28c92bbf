package main

import (
	"fmt"
	"os"

	"issue-tracker/accounts"
	"issue-tracker/api"
	"issue-tracker/auth"
	"issue-tracker/config"
	"issue-tracker/orm"
	"issue-tracker/tracker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const appName = "issue-tracker"

func main() {
	cfg, err := config.Load(appName, config.Defaults...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	initLogging(cfg)

	db := orm.InitDB(cfg)

	accountsService := accounts.NewService(db)
	trackerService := tracker.NewService(db)
	tokens := auth.NewManager(cfg.Auth)

	server := api.NewServer(accountsService, trackerService, tokens)
	router := server.Router(cfg.ProductionEnvironment)

	log.Info().Int("port", cfg.Port).Msg("Starting HTTP server")

	if err := router.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatal().Err(err).Msg("HTTP server stopped")
	}
}

func initLogging(cfg *config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.ProductionEnvironment {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
