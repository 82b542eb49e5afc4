package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/srg/blegate/internal/device"
)

// ScriptedDevice is a device.ScanningDevice that replays a fixed list of
// advertisements and then blocks until the scan context ends, the way a real
// adapter does.
type ScriptedDevice struct {
	// Advertisements are delivered in order.
	Advertisements []device.Advertisement
	// Interval is slept before each advertisement.
	Interval time.Duration
	// ScanErr, when set, is returned immediately instead of scanning.
	ScanErr error
	// DeliverAfterCancel keeps delivering the remaining advertisements after
	// the context is cancelled, simulating callbacks already queued in the stack.
	DeliverAfterCancel bool

	mu        sync.Mutex
	scanCalls int
	allowDup  bool
	delivered int
}

func (d *ScriptedDevice) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	d.mu.Lock()
	d.scanCalls++
	d.allowDup = allowDup
	d.mu.Unlock()

	if d.ScanErr != nil {
		return d.ScanErr
	}

	for _, adv := range d.Advertisements {
		if ctx.Err() != nil && !d.DeliverAfterCancel {
			break
		}
		if d.Interval > 0 {
			select {
			case <-time.After(d.Interval):
			case <-ctx.Done():
				if !d.DeliverAfterCancel {
					return ctx.Err()
				}
			}
		}
		handler(adv)
		d.mu.Lock()
		d.delivered++
		d.mu.Unlock()
	}

	<-ctx.Done()
	return ctx.Err()
}

// ScanCalls returns how many times Scan was invoked
func (d *ScriptedDevice) ScanCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scanCalls
}

// AllowDuplicates returns the allowDup flag of the last Scan call
func (d *ScriptedDevice) AllowDuplicates() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allowDup
}

// Delivered returns how many advertisements reached the handler
func (d *ScriptedDevice) Delivered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delivered
}
