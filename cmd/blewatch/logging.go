package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tinygo.org/x/blewatch"
)

// loadConfig reads the file named by --config, or returns the defaults.
// --log-level overrides the configured level.
func loadConfig(cmd *cobra.Command) (*blewatch.Config, error) {
	cfg := blewatch.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		cfg, err = blewatch.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if _, err := logrus.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// configureLogger creates a logger writing to the command's error output.
func configureLogger(cmd *cobra.Command, cfg *blewatch.Config) *logrus.Logger {
	logger := cfg.NewLogger()
	logger.SetOutput(cmd.ErrOrStderr())
	return logger
}
