package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/blegate/internal/device"
	"github.com/srg/blegate/internal/devicefactory"
	"github.com/srg/blegate/internal/hook"
	"github.com/srg/blegate/pkg/config"
	"github.com/srg/blegate/session"
)

const targetPrompt = "Enter the UUID to search for: "

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [target-id]",
		Short: "Grant access if the target device is nearby",
		Long: `Scan for the target BLE device and grant access if it is seen before the timeout.

The target is the peripheral identifier reported by the platform: a
CoreBluetooth UUID on macOS or a MAC address on Linux. Matching ignores case
and '-' or ':' separators. When no target is given as an argument or in the
config file, it is read from stdin.

Exit status is 0 when access is granted, 2 when it is denied and 3 when the
Bluetooth adapter is not available.`,
		Example: `  blegate check 5A2C1B7E-3F40-4C1E-9B8A-0D6E2F1A9C33
  blegate check AA:BB:CC:DD:EE:FF --timeout 10s
  blegate check --format json --on-verdict open_door.lua`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().DurationP("timeout", "t", session.DefaultTimeout, "How long to scan before denying access")
	cmd.Flags().StringP("format", "f", "text", fmt.Sprintf("Output format %v", config.OutputFormats))
	cmd.Flags().String("backend", devicefactory.BackendGoBLE, fmt.Sprintf("BLE backend %v", devicefactory.Backends))
	cmd.Flags().String("on-verdict", "", "Lua script to run once the verdict is known")
	cmd.Flags().Bool("allow-duplicates", false, "Ask the radio to report repeated advertisements")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Target = args[0]
	}
	if cmd.Flags().Changed("format") {
		cfg.OutputFormat, _ = cmd.Flags().GetString("format")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Target) == "" {
		cfg.Target, err = promptTarget(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}
	target, err := device.ValidateIdentifier(cfg.Target)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	sess, err := session.New(&session.Options{
		Target:          target,
		Timeout:         cfg.ScanTimeout,
		AllowDuplicates: cfg.AllowDuplicates,
		Backend:         cfg.Backend,
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := NewProgressPrinter(cmd.ErrOrStderr(), "Searching for "+target, session.PhaseWaitingForAdapter,
		cfg.ScanTimeout, session.PhaseProcessing)
	progress.Start()
	defer progress.Stop()

	result, runErr := sess.Run(ctx, progress.Callback())
	progress.Stop()

	if result == nil {
		return runErr
	}
	if errors.Is(runErr, context.Canceled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "\nCtrl+C pressed, scan cancelled. Access not granted.")
		return runErr
	}

	if err := printVerdict(cmd.OutOrStdout(), cfg.OutputFormat, result, runErr); err != nil {
		return err
	}

	if cfg.HookScript != "" {
		if err := runVerdictHook(ctx, cmd, logger, cfg.HookScript, result); err != nil {
			return err
		}
	}

	switch {
	case runErr != nil:
		return runErr
	case !result.Granted():
		return ErrAccessDenied
	default:
		return nil
	}
}

// runVerdictHook runs the hook script under ctx, which stays bound to
// SIGINT/SIGTERM so Ctrl+C also stops a script that never returns.
func runVerdictHook(ctx context.Context, cmd *cobra.Command, logger *logrus.Logger, path string, result *session.Result) error {
	runner := hook.NewRunner(logger, cmd.OutOrStdout())
	err := runner.RunFile(ctx, path, verdictFor(result))
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "\nCtrl+C pressed, verdict hook cancelled.")
	}
	return err
}

// promptTarget asks for the target identifier on in, one line. The prompt
// goes to out (stderr) so stdout carries only the verdict.
func promptTarget(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, targetPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read target identifier: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no target identifier given")
	}
	return line, nil
}

func verdictFor(r *session.Result) hook.Verdict {
	v := hook.Verdict{
		SessionID: r.SessionID,
		Target:    r.Target,
		State:     r.State.String(),
		Granted:   r.Granted(),
		ElapsedMs: r.Elapsed.Milliseconds(),
	}
	if r.Match != nil {
		v.DeviceID = r.Match.ID
		v.DeviceName = r.Match.Name
	}
	return v
}

