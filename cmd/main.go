package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/ryozaki/mbx/internal/api"
	"github.com/ryozaki/mbx/internal/session"
	"github.com/ryozaki/mbx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	tokenPath := config.API.TokenPath
	if tokenPath == "" {
		if dir, err := shared.StateDir(); err == nil {
			tokenPath = filepath.Join(dir, "token")
		} else {
			logger.Warnf("failed to resolve state directory: %v", err)
			tokenPath = ".mbx-token"
		}
	}

	store := session.NewFileStore(tokenPath)
	client := api.NewClient(config.API.BaseURL, nil, store)
	manager := session.NewManager(client, store, logger)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		API:        client,
		Session:    manager,
		Store:      store,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "mbx",
		Usage:    "Browse and track manga from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
