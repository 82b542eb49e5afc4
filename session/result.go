package session

import (
	"fmt"
	"time"
)

// State is the lifecycle position of a session
type State int

const (
	StateIdle State = iota
	StateScanning
	StateMatched
	StateTimedOut
	StateUnavailable
	StateCancelled
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateScanning:    "scanning",
	StateMatched:     "matched",
	StateTimedOut:    "timed_out",
	StateUnavailable: "unavailable",
	StateCancelled:   "cancelled",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether the session has ended
func (s State) Terminal() bool {
	return s != StateIdle && s != StateScanning
}

// Discovery is a peripheral seen during the session
type Discovery struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	RSSI   int       `json:"rssi"`
	SeenAt time.Time `json:"seen_at"`
}

// Result is the outcome of a finished session
type Result struct {
	SessionID  string        `json:"session_id"`
	Target     string        `json:"target,omitempty"`
	State      State         `json:"state"`
	Match      *Discovery    `json:"match,omitempty"`
	Discovered []Discovery   `json:"discovered"`
	StartedAt  time.Time     `json:"started_at"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Granted reports whether the target was seen before the deadline
func (r *Result) Granted() bool {
	return r != nil && r.State == StateMatched
}
