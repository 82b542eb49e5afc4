// Package tinygo scans through tinygo.org/x/bluetooth, which drives
// CoreBluetooth on macOS, BlueZ over D-Bus on Linux and WinRT on Windows.
package tinygo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/srg/blegate/internal/device"
	"github.com/srg/blegate/internal/groutine"
	"tinygo.org/x/bluetooth"
)

// ErrScanEnded is returned when the adapter stops scanning before ctx is done.
var ErrScanEnded = errors.New("scan ended unexpectedly")

// Adapter is the subset of *bluetooth.Adapter used for scanning.
type Adapter interface {
	Enable() error
	Scan(callback func(*bluetooth.Adapter, bluetooth.ScanResult)) error
	StopScan() error
}

// AdapterFactory returns the adapter to scan with (can be overridden in tests)
var AdapterFactory = func() Adapter {
	return bluetooth.DefaultAdapter
}

type advertisement struct {
	addr string
	name string
	rssi int
}

func (a *advertisement) Addr() string      { return a.addr }
func (a *advertisement) LocalName() string { return a.name }
func (a *advertisement) RSSI() int         { return a.rssi }

func toAdvertisement(res bluetooth.ScanResult) *advertisement {
	adv := &advertisement{
		addr: res.Address.String(),
		rssi: int(res.RSSI),
	}
	if res.AdvertisementPayload != nil {
		adv.name = res.LocalName()
	}
	return adv
}

type scanner struct {
	adapter Adapter
}

// NewScanner enables the default adapter and returns it as a device.ScanningDevice.
func NewScanner() (device.ScanningDevice, error) {
	adapter := AdapterFactory()
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("%w: %v", device.ErrBluetoothOff, err)
	}
	return &scanner{adapter: adapter}, nil
}

// Scan runs the adapter scan loop until ctx is done. tinygo always reports
// duplicates, so they are filtered here unless allowDup is set.
func (s *scanner) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)

	errCh := make(chan error, 1)
	groutine.Go(ctx, "tinygo-scan", func(context.Context) {
		errCh <- s.adapter.Scan(func(_ *bluetooth.Adapter, res bluetooth.ScanResult) {
			adv := toAdvertisement(res)
			if !allowDup {
				mu.Lock()
				_, dup := seen[adv.addr]
				seen[adv.addr] = struct{}{}
				mu.Unlock()
				if dup {
					return
				}
			}
			handler(adv)
		})
	})

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrScanEnded
	case <-ctx.Done():
		if err := s.adapter.StopScan(); err != nil {
			return fmt.Errorf("stop scan: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}
