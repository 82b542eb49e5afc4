package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/srg/blegate/internal/device"
	"github.com/srg/blegate/internal/hook"
	"github.com/srg/blegate/session"
)

// Command-level errors
var (
	// ErrAccessDenied is returned by check when the target was not seen in time.
	// The verdict has already been printed, so main exits without an error message.
	ErrAccessDenied = errors.New("access denied")
)

// Process exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitDenied      = 2
	exitUnavailable = 3
	exitInterrupted = 130
)

// ExitCode maps a command error onto the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ErrAccessDenied):
		return exitDenied
	case errors.Is(err, session.ErrAdapterUnavailable), errors.Is(err, device.ErrBluetoothOff):
		return exitUnavailable
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return exitError
	}
}

// isQuietError reports errors whose outcome the user has already seen
func isQuietError(err error) bool {
	return errors.Is(err, ErrAccessDenied) || errors.Is(err, context.Canceled)
}

// FormatUserError turns known errors into operator-facing messages
func FormatUserError(err error) string {
	var scriptErr *hook.ScriptError
	switch {
	case errors.Is(err, session.ErrAdapterUnavailable), errors.Is(err, device.ErrBluetoothOff):
		return fmt.Sprintf("Bluetooth is not available. Please check your settings.\n  cause: %v", err)
	case errors.Is(err, device.ErrUnsupported):
		return fmt.Sprintf("BLE scanning is not supported here: %v", err)
	case errors.As(err, &scriptErr):
		return fmt.Sprintf("verdict hook failed: %v", scriptErr)
	default:
		return err.Error()
	}
}
