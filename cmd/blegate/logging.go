package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/blegate/pkg/config"
)

// configureLogger creates a logger with the appropriate log level based on flags and config.
// --log-level takes precedence over --verbose, which takes precedence over the config file.
// Logs go to the command's stderr so stdout carries only the verdict.
func configureLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	if logLevelStr, _ := cmd.Flags().GetString("log-level"); logLevelStr != "" {
		cfg.LogLevel = logLevelStr
	} else if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}

	logger := cfg.NewLogger()
	logger.SetOutput(cmd.ErrOrStderr())
	return logger, nil
}
