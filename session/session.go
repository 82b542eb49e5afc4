// Package session implements a single presence-gate scan: wait for the
// adapter, scan until the target identifier is seen or the deadline passes,
// and report which of the two happened.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"github.com/srg/blegate/internal/device"
	"github.com/srg/blegate/internal/devicefactory"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultTimeout is how long a session scans before denying access.
const DefaultTimeout = 25 * time.Second

// UnknownName is recorded for peripherals that advertise no local name.
const UnknownName = "Unknown"

// Progress phases reported through ProgressCallback
const (
	PhaseWaitingForAdapter = "Waiting for adapter"
	PhaseScanning          = "Scanning"
	PhaseProcessing        = "Processing results"
)

var (
	ErrAdapterUnavailable = errors.New("bluetooth adapter unavailable")
	ErrSessionUsed        = errors.New("session already used")
)

// ProgressCallback is called when the session phase changes
type ProgressCallback func(phase string)

// Options configures a session
type Options struct {
	// Target is the peripheral identifier that grants access. Empty means
	// survey mode: nothing matches and the session always runs to the deadline.
	Target          string
	Timeout         time.Duration
	AllowDuplicates bool
	Backend         string
}

// DefaultOptions returns default session options
func DefaultOptions() *Options {
	return &Options{
		Timeout: DefaultTimeout,
		Backend: devicefactory.BackendGoBLE,
	}
}

// Session is a single-use scan for one target identifier.
type Session struct {
	id        string
	opts      Options
	targetKey string
	logger    *logrus.Logger
	used      atomic.Bool

	// seen is the lock-free duplicate filter consulted before taking mu.
	seen *hashmap.Map[string, struct{}]

	mu        sync.Mutex
	state     State
	devices   *orderedmap.OrderedMap[string, Discovery]
	match     *Discovery
	scanCtx   context.Context
	stopScan  context.CancelFunc
	startedAt time.Time
}

// New creates a session. A nil opts uses DefaultOptions; a non-positive
// timeout falls back to DefaultTimeout.
func New(opts *Options, logger *logrus.Logger) (*Session, error) {
	if logger == nil {
		logger = logrus.New()
	}

	o := *DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}

	if o.Target != "" {
		target, err := device.ValidateIdentifier(o.Target)
		if err != nil {
			return nil, err
		}
		o.Target = target
	}

	return &Session{
		id:        ulid.Make().String(),
		opts:      o,
		targetKey: device.NormalizeIdentifier(o.Target),
		logger:    logger,
		seen:      hashmap.New[string, struct{}](),
		devices:   orderedmap.New[string, Discovery](),
		state:     StateIdle,
	}, nil
}

// ID returns the session ULID
func (s *Session) ID() string { return s.id }

// Target returns the trimmed target identifier
func (s *Session) Target() string { return s.opts.Target }

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run opens the adapter, scans until the target is found or the timeout
// elapses, and returns the outcome.
//
// A Result is returned whenever the session got past argument checks, even
// alongside an error: ErrAdapterUnavailable when the radio cannot be used and
// ctx.Err() when the caller cancelled. Neither grants access.
func (s *Session) Run(ctx context.Context, progressCallback ProgressCallback) (*Result, error) {
	if !s.used.CompareAndSwap(false, true) {
		return nil, ErrSessionUsed
	}
	if progressCallback == nil {
		progressCallback = func(string) {} // No-op callback
	}

	log := s.logger.WithFields(logrus.Fields{
		"session": s.id,
		"target":  s.opts.Target,
	})

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()

	progressCallback(PhaseWaitingForAdapter)
	dev, err := devicefactory.DeviceFactory(s.opts.Backend)
	if err != nil {
		return s.unavailable(log, err)
	}
	if ctx.Err() != nil {
		return s.cancelled(log, ctx.Err())
	}

	scanCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	s.mu.Lock()
	s.state = StateScanning
	s.scanCtx = scanCtx
	s.stopScan = cancel
	s.mu.Unlock()

	log.WithField("timeout", s.opts.Timeout).Info("Bluetooth is powered on. Scanning for devices...")
	progressCallback(PhaseScanning)

	scanErr := dev.Scan(scanCtx, s.opts.AllowDuplicates, s.handleAdvertisement)

	progressCallback(PhaseProcessing)

	s.mu.Lock()
	matched := s.state == StateMatched
	s.mu.Unlock()

	switch {
	case matched:
		return s.snapshot(), nil
	case ctx.Err() != nil:
		return s.cancelled(log, ctx.Err())
	case scanErr != nil && !errors.Is(scanErr, context.DeadlineExceeded) && !errors.Is(scanErr, context.Canceled):
		return s.unavailable(log, scanErr)
	default:
		s.expire(log)
		return s.snapshot(), nil
	}
}

// handleAdvertisement records a newly seen peripheral and ends the scan when
// it is the target. Repeats, reports arriving after the session left the
// Scanning state and reports delivered once the scan context is done are
// ignored.
func (s *Session) handleAdvertisement(adv device.Advertisement) {
	id := adv.Addr()
	key := device.NormalizeIdentifier(id)
	if key == "" {
		return
	}
	if _, ok := s.seen.Get(key); ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateScanning || s.scanCtx.Err() != nil {
		return
	}
	if !s.seen.Insert(key, struct{}{}) {
		return
	}

	name := adv.LocalName()
	if name == "" {
		name = UnknownName
	}
	d := Discovery{
		ID:     id,
		Name:   name,
		RSSI:   adv.RSSI(),
		SeenAt: time.Now(),
	}
	s.devices.Set(key, d)

	log := s.logger.WithFields(logrus.Fields{
		"session": s.id,
		"id":      d.ID,
		"name":    d.Name,
		"rssi":    d.RSSI,
	})
	log.Info("Discovered device")

	if s.targetKey == "" || key != s.targetKey {
		return
	}

	s.state = StateMatched
	s.match = &d
	log.Info("Matching identifier found! Stopping scan immediately...")
	s.stopScan()
}

// expire moves an unmatched session to TimedOut and logs what was seen.
func (s *Session) expire(log *logrus.Entry) {
	s.mu.Lock()
	if s.state == StateScanning {
		s.state = StateTimedOut
		log.Info("Stopping scan...")
	}
	devices := s.discoveredLocked()
	s.mu.Unlock()

	log.WithField("device_count", len(devices)).Info("Discovered Peripherals:")
	for _, d := range devices {
		log.WithFields(logrus.Fields{"id": d.ID, "name": d.Name}).Info("Discovered peripheral")
	}
}

func (s *Session) unavailable(log *logrus.Entry, cause error) (*Result, error) {
	s.mu.Lock()
	s.state = StateUnavailable
	s.mu.Unlock()

	log.WithError(cause).Warn("Bluetooth is not available. Please check your settings.")
	return s.snapshot(), fmt.Errorf("%w: %w", ErrAdapterUnavailable, cause)
}

func (s *Session) cancelled(log *logrus.Entry, cause error) (*Result, error) {
	s.mu.Lock()
	s.state = StateCancelled
	s.mu.Unlock()

	log.Info("Scan cancelled, access not granted")
	return s.snapshot(), cause
}

// Discovered returns the peripherals seen so far, in discovery order
func (s *Session) Discovered() []Discovery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discoveredLocked()
}

func (s *Session) discoveredLocked() []Discovery {
	out := make([]Discovery, 0, s.devices.Len())
	for pair := s.devices.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func (s *Session) snapshot() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &Result{
		SessionID:  s.id,
		Target:     s.opts.Target,
		State:      s.state,
		Discovered: s.discoveredLocked(),
		StartedAt:  s.startedAt,
		Elapsed:    time.Since(s.startedAt),
	}
	if s.match != nil {
		m := *s.match
		r.Match = &m
	}
	return r
}
