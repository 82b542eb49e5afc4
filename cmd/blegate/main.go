package main

import (
	"fmt"
	"os"
	"unicode"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// formatVersion adds 'v' prefix if version starts with a digit
func formatVersion(ver string) string {
	if len(ver) > 0 && unicode.IsDigit(rune(ver[0])) {
		return "v" + ver
	}
	return ver
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blegate",
		Short: "Bluetooth Low Energy presence gate",
		Long: `Grant or deny access based on the presence of a nearby Bluetooth Low Energy device.

- check: scan for one target identifier and grant access if it shows up in time
- scan: list nearby devices to find the identifier to use as a target

On macOS identifiers are CoreBluetooth peripheral UUIDs; on Linux they are MAC addresses.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", formatVersion(version), commit, date),
	}

	// Silence Cobra's "Error:" prefix - main() prints clean errors
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newScanCmd())

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !isQuietError(err) {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", FormatUserError(err))
		}
		os.Exit(ExitCode(err))
	}
}
