package main

import (
	"github.com/spf13/cobra"
	"github.com/srg/blegate/pkg/config"
)

// loadConfig reads --config (if any) and overlays the explicitly set flags
// shared by check and scan. Output format is left to each command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.ScanTimeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("backend") {
		cfg.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("allow-duplicates") {
		cfg.AllowDuplicates, _ = flags.GetBool("allow-duplicates")
	}
	if flags.Changed("on-verdict") {
		cfg.HookScript, _ = flags.GetString("on-verdict")
	}

	return cfg, nil
}
