// Package hook runs an operator-supplied Lua script once a verdict is known,
// so sites can open a door, notify someone or log to their own system.
//
// The script sees a global table named verdict:
//
//	verdict.session_id   ULID of the scan session
//	verdict.target       target identifier
//	verdict.state        "matched", "timed_out", "unavailable" or "cancelled"
//	verdict.granted      boolean
//	verdict.device_id    matched identifier ("" when denied)
//	verdict.device_name  matched name ("" when denied)
//	verdict.elapsed_ms   session duration in milliseconds
package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aarzilli/golua/lua"
	"github.com/sirupsen/logrus"
	"github.com/srg/blegate/internal/groutine"
)

// Verdict is the data exposed to the script
type Verdict struct {
	SessionID  string
	Target     string
	State      string
	Granted    bool
	DeviceID   string
	DeviceName string
	ElapsedMs  int64
}

// ScriptError represents a Lua load or execution failure
type ScriptError struct {
	Type       string // "syntax", "runtime", "api"
	Message    string
	Source     string
	Underlying error
}

func (e *ScriptError) Error() string {
	prefix := fmt.Sprintf("Lua %s error", e.Type)
	if e.Source != "" {
		prefix = fmt.Sprintf("%s (in %s)", prefix, e.Source)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ScriptError) Unwrap() error {
	return e.Underlying
}

// Is matches another ScriptError of the same Type
func (e *ScriptError) Is(target error) bool {
	var other *ScriptError
	if errors.As(target, &other) {
		return e.Type == other.Type
	}
	return false
}

// Sentinels for errors.Is checks by type
var (
	ErrSyntax  = &ScriptError{Type: "syntax"}
	ErrRuntime = &ScriptError{Type: "runtime"}
)

// Runner executes verdict scripts
type Runner struct {
	logger *logrus.Logger
	stdout io.Writer
}

// NewRunner creates a Runner whose script print() output goes to stdout.
func NewRunner(logger *logrus.Logger, stdout io.Writer) *Runner {
	if logger == nil {
		logger = logrus.New()
	}
	if stdout == nil {
		stdout = io.Discard
	}
	return &Runner{logger: logger, stdout: stdout}
}

// RunFile loads the script at path and runs it with v.
func (r *Runner) RunFile(ctx context.Context, path string, v Verdict) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read hook script %s: %w", path, err)
	}
	return r.Run(ctx, string(content), path, v)
}

// Run executes script with v bound to the verdict global. A fresh Lua state
// is used per call. When ctx ends while the script is still running, Run
// returns ctx.Err() without waiting; the script's state is left to the
// process exit.
func (r *Runner) Run(ctx context.Context, script, name string, v Verdict) error {
	if strings.TrimSpace(script) == "" {
		return &ScriptError{Type: "api", Message: "empty script", Source: name}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	L := lua.NewState()
	abandoned := false
	defer func() {
		// A state still executing on the hook goroutine cannot be closed
		if !abandoned {
			L.Close()
		}
	}()
	L.OpenLibs()

	r.registerPrint(L)
	pushVerdict(L, v)

	log := r.logger.WithFields(logrus.Fields{"script": name, "session": v.SessionID})
	log.Debug("Running verdict hook")

	if status := L.LoadString(script); status != 0 {
		msg := L.ToString(-1)
		L.Pop(1)
		return &ScriptError{Type: "syntax", Message: msg, Source: name}
	}
	done := make(chan error, 1)
	groutine.Go(ctx, "verdict-hook", func(context.Context) {
		done <- L.Call(0, 0)
	})

	select {
	case err := <-done:
		if err != nil {
			return &ScriptError{Type: "runtime", Message: err.Error(), Source: name, Underlying: err}
		}
	case <-ctx.Done():
		abandoned = true
		log.Warn("Verdict hook cancelled while running")
		return ctx.Err()
	}

	log.Debug("Verdict hook completed")
	return nil
}

// registerPrint routes print() to the runner's stdout, tab-separated like stock Lua.
func (r *Runner) registerPrint(L *lua.State) {
	L.PushGoFunction(func(L *lua.State) int {
		top := L.GetTop()
		parts := make([]string, 0, top)
		for i := 1; i <= top; i++ {
			switch {
			case L.IsNil(i):
				parts = append(parts, "nil")
			case L.IsBoolean(i):
				if L.ToBoolean(i) {
					parts = append(parts, "true")
				} else {
					parts = append(parts, "false")
				}
			default:
				base := L.GetTop()
				L.GetGlobal("tostring")
				L.PushValue(i)
				if err := L.Call(1, 1); err != nil {
					L.SetTop(base)
					parts = append(parts, fmt.Sprintf("<tostring error: %s>", strings.ReplaceAll(err.Error(), "\n", " ")))
					continue
				}
				parts = append(parts, L.ToString(-1))
				L.SetTop(base)
			}
		}
		if _, err := fmt.Fprintln(r.stdout, strings.Join(parts, "\t")); err != nil {
			r.logger.WithError(err).Debug("Failed to write hook output")
		}
		return 0
	})
	L.SetGlobal("print")
}

func pushVerdict(L *lua.State, v Verdict) {
	L.NewTable()
	setString := func(key, value string) {
		L.PushString(value)
		L.SetField(-2, key)
	}
	setString("session_id", v.SessionID)
	setString("target", v.Target)
	setString("state", v.State)
	setString("device_id", v.DeviceID)
	setString("device_name", v.DeviceName)
	L.PushBoolean(v.Granted)
	L.SetField(-2, "granted")
	L.PushInteger(v.ElapsedMs)
	L.SetField(-2, "elapsed_ms")
	L.SetGlobal("verdict")
}
