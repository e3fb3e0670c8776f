package cli

import (
	"fmt"

	"Mansoor88-6/activity-agent/internal/config"
	"Mansoor88-6/activity-agent/internal/logger"
)

// loadRuntime reads the configuration and builds the process logger
func loadRuntime(configPath string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}
