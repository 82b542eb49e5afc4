package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/srg/blegate/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
		terminal bool
	}{
		{StateIdle, "idle", false},
		{StateScanning, "scanning", false},
		{StateMatched, "matched", true},
		{StateTimedOut, "timed_out", true},
		{StateUnavailable, "unavailable", true},
		{StateCancelled, "cancelled", true},
		{State(42), "state(42)", true},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
			assert.Equal(t, tt.terminal, tt.state.Terminal())
		})
	}
}

func TestResult_Granted(t *testing.T) {
	var nilResult *Result
	assert.False(t, nilResult.Granted())
	assert.False(t, (&Result{State: StateTimedOut}).Granted())
	assert.False(t, (&Result{State: StateUnavailable}).Granted())
	assert.True(t, (&Result{State: StateMatched}).Granted())
}

func TestResult_JSON(t *testing.T) {
	seen := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	match := Discovery{ID: "01234567-89AB-CDEF-0123-456789ABCDEF", Name: "Phone", RSSI: -40, SeenAt: seen}
	r := &Result{
		SessionID:  "01JABCDEF0000000000000000",
		Target:     match.ID,
		State:      StateMatched,
		Match:      &match,
		Discovered: []Discovery{match},
		StartedAt:  seen.Add(-time.Second),
		Elapsed:    time.Second,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	testutils.NewJSONAsserter(t).Assert(string(data), `{
		"session_id": "01JABCDEF0000000000000000",
		"target": "01234567-89AB-CDEF-0123-456789ABCDEF",
		"state": "matched",
		"match": {"id": "01234567-89AB-CDEF-0123-456789ABCDEF", "name": "Phone", "rssi": -40},
		"discovered": [{"id": "01234567-89AB-CDEF-0123-456789ABCDEF", "name": "Phone"}],
		"started_at": "<<PRESENCE>>",
		"elapsed_ns": 1000000000
	}`)
}
