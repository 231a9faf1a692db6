package main

import (
	"context"
	"os"

	"github.com/desertthunder/cinemania/internal/shared"
)

const (
	defaultConfigPath = "config.toml"
	version           = "0.3.0"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := defaultConfigPath
	if p := os.Getenv("CINEMANIA_CONFIG"); p != "" {
		configPath = p
	}

	config, err := shared.LoadConfigOrDefault(configPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		config = shared.DefaultConfig()
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})
	defer runner.Close()

	if err := runner.command().Run(context.Background(), os.Args); err != nil {
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}
