package main

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/blegate/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggingTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().BoolP("verbose", "v", false, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestConfigureLogger(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		cfgLevel  string
		wantLevel logrus.Level
		wantErr   string
	}{
		{name: "silent by default", wantLevel: logrus.PanicLevel},
		{name: "config level", cfgLevel: "warn", wantLevel: logrus.WarnLevel},
		{name: "verbose", args: []string{"--verbose"}, cfgLevel: "error", wantLevel: logrus.DebugLevel},
		{name: "log-level wins over verbose", args: []string{"-v", "--log-level", "info"}, wantLevel: logrus.InfoLevel},
		{name: "invalid level", args: []string{"--log-level", "loud"}, wantErr: "invalid log level: loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newLoggingTestCmd(t, tt.args...)
			cfg := config.DefaultConfig()
			cfg.LogLevel = tt.cfgLevel

			logger, err := configureLogger(cmd, cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, logger.GetLevel())
		})
	}
}

func TestConfigureLogger_WritesToCommandStderr(t *testing.T) {
	cmd := newLoggingTestCmd(t, "--log-level", "info")
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)

	logger, err := configureLogger(cmd, config.DefaultConfig())
	require.NoError(t, err)

	logger.Info("Discovered device")
	assert.Contains(t, stderr.String(), "Discovered device")
}
