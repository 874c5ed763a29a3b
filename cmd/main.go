package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"github.com/desertthunder/moodcrowd/internal/repositories"
	"github.com/desertthunder/moodcrowd/internal/services"
	"github.com/desertthunder/moodcrowd/internal/session"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"github.com/urfave/cli/v3"
)

const (
	defaultConfigPath = "config.toml"
	configEnv         = "MOODCROWD_CONFIG"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath, explicit := os.LookupEnv(configEnv)
	if !explicit || configPath == "" {
		configPath = defaultConfigPath
	}

	config, err := shared.LoadConfig(configPath)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrMissingConfig) && !explicit:
		config = shared.DefaultConfig()
	default:
		logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		config = shared.DefaultConfig()
	}

	if err := shared.ApplyLogLevel(logger, config.Log.Level); err != nil {
		logger.Warn("ignoring log level", "error", err)
	}

	client, err := services.NewAPIClient(services.OptionsFromConfig(config.API, logger))
	if err != nil {
		logger.Fatalf("failed to create API client: %v", err)
	}
	if err := client.LoadSession(config.Session.CookieFile); err != nil {
		logger.Warn("failed to restore session", "error", err)
	}

	var store session.Store = client
	var db *sql.DB
	if config.Storage.Mode == shared.StorageLocal {
		if db, err = openDatabase(config); err != nil {
			logger.Fatalf("failed to open local playlist store: %v", err)
		}
		store = repositories.NewLocalPlaylistStore(db)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Client:     client,
		Store:      store,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "moodcrowd",
		Usage:    "Analyze MP3 files, save them as mood playlists and play them back",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	err = app.Run(context.Background(), os.Args)
	if db != nil {
		db.Close()
	}
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotAuthenticated):
			logger.Fatalf("%v (run 'moodcrowd auth login' first)", err)
		case errors.Is(err, context.Canceled):
			os.Exit(130)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
