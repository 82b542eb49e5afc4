package hook

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grantedVerdict() Verdict {
	return Verdict{
		SessionID:  "01JABCDEF0000000000000000",
		Target:     "01234567-89AB-CDEF-0123-456789ABCDEF",
		State:      "matched",
		Granted:    true,
		DeviceID:   "01234567-89ab-cdef-0123-456789abcdef",
		DeviceName: "Phone",
		ElapsedMs:  1250,
	}
}

func newRunner(out *bytes.Buffer) *Runner {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewRunner(logger, out)
}

func TestRun_ExposesVerdict(t *testing.T) {
	out := &bytes.Buffer{}
	script := `
if verdict.granted then
  print("open", verdict.device_name, verdict.state, verdict.elapsed_ms)
else
  print("closed")
end
print(verdict.session_id, verdict.target, verdict.device_id)
`
	err := newRunner(out).Run(context.Background(), script, "door.lua", grantedVerdict())
	require.NoError(t, err)
	assert.Equal(t,
		"open\tPhone\tmatched\t1250\n"+
			"01JABCDEF0000000000000000\t01234567-89AB-CDEF-0123-456789ABCDEF\t01234567-89ab-cdef-0123-456789abcdef\n",
		out.String())
}

func TestRun_DeniedVerdict(t *testing.T) {
	out := &bytes.Buffer{}
	v := Verdict{State: "timed_out", Target: "AA:BB:CC:DD:EE:FF"}

	err := newRunner(out).Run(context.Background(), `print(verdict.granted, verdict.device_id == "", nil)`, "deny.lua", v)
	require.NoError(t, err)
	assert.Equal(t, "false\ttrue\tnil\n", out.String())
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		errType *ScriptError
		message string
	}{
		{name: "syntax error", script: "if then", errType: ErrSyntax, message: "Lua syntax error (in bad.lua)"},
		{name: "runtime error", script: `error("relay offline")`, errType: ErrRuntime, message: "relay offline"},
		{name: "empty script", script: "  \n", errType: &ScriptError{Type: "api"}, message: "empty script"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newRunner(&bytes.Buffer{}).Run(context.Background(), tt.script, "bad.lua", grantedVerdict())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.errType)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &bytes.Buffer{}
	err := newRunner(out).Run(ctx, `print("nope")`, "x.lua", grantedVerdict())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestRun_CancelledWhileRunning(t *testing.T) {
	// Busy loop with no Go call inside; bounded so the abandoned state finishes on its own
	script := `
local start = os.clock()
while os.clock() - start < 2 do end
print("finished")
`
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	started := time.Now()
	err := newRunner(&bytes.Buffer{}).Run(ctx, script, "spin.lua", grantedVerdict())

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(started), time.Second, "cancellation MUST NOT wait for the script")
}

func TestRun_PrintSurvivesFailingTostring(t *testing.T) {
	out := &bytes.Buffer{}
	script := `
local bad = setmetatable({}, {__tostring = function() error("no string for you") end})
print("before", bad, "after")
print("next line")
`
	require.NoError(t, newRunner(out).Run(context.Background(), script, "meta.lua", grantedVerdict()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	parts := strings.Split(lines[0], "\t")
	require.Len(t, parts, 3)
	assert.Equal(t, "before", parts[0])
	assert.Contains(t, parts[1], "<tostring error:")
	assert.Equal(t, "after", parts[2])
	assert.Equal(t, "next line", lines[1])
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notify.lua")
	require.NoError(t, os.WriteFile(path, []byte(`print("granted=" .. tostring(verdict.granted))`), 0o600))

	out := &bytes.Buffer{}
	require.NoError(t, newRunner(out).RunFile(context.Background(), path, grantedVerdict()))
	assert.Equal(t, "granted=true\n", out.String())

	err := newRunner(out).RunFile(context.Background(), filepath.Join(dir, "missing.lua"), grantedVerdict())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read hook script")
}
