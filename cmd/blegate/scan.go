package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/srg/blegate/internal/devicefactory"
	"github.com/srg/blegate/session"
)

const defaultScanDuration = 10 * time.Second

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List nearby BLE devices",
		Long: `Scan for Bluetooth Low Energy devices in the vicinity and list them.

Use it to find the identifier of the device that should grant access, then
pass that identifier to 'blegate check' or set it as 'target' in the config
file. Devices are listed strongest signal first.`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}

	cmd.Flags().DurationP("duration", "d", defaultScanDuration, "Scan duration")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
	cmd.Flags().String("backend", devicefactory.BackendGoBLE, fmt.Sprintf("BLE backend %v", devicefactory.Backends))
	cmd.Flags().Bool("allow-duplicates", false, "Ask the radio to report repeated advertisements")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	validFormats := []string{"table", "json"}
	switch format {
	case "table", "json":
	default:
		return fmt.Errorf("invalid format '%s': must be one of %v", format, validFormats)
	}

	duration, _ := cmd.Flags().GetDuration("duration")
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %s", duration)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	sess, err := session.New(&session.Options{
		Timeout:         duration,
		AllowDuplicates: cfg.AllowDuplicates,
		Backend:         cfg.Backend,
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := NewProgressPrinter(cmd.ErrOrStderr(), "Scanning for BLE devices", session.PhaseWaitingForAdapter,
		duration, session.PhaseProcessing)
	progress.Start()
	defer progress.Stop()

	result, runErr := sess.Run(ctx, progress.Callback())
	progress.Stop()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "\nCtrl+C pressed, cancelling scan...")
	}

	// An interrupted survey still lists what it saw
	if err := printDiscoveries(cmd.OutOrStdout(), format, result); err != nil {
		return err
	}
	return runErr
}
