package device

import (
	"context"
	"errors"
)

// Adapter errors
var (
	// ErrBluetoothOff indicates the local adapter is powered off, missing or
	// not authorised for use by this process.
	ErrBluetoothOff = errors.New("bluetooth is not available")
	ErrUnsupported  = errors.New("unsupported")
)

// Advertisement is a single advertising report received while scanning.
type Advertisement interface {
	// Addr returns the platform identifier of the peripheral: a UUID on
	// macOS, a MAC address on Linux.
	Addr() string
	LocalName() string
	RSSI() int
}

// ScanningDevice represents a BLE central capable of scanning for advertisements.
// Scan blocks until ctx is done and then returns ctx.Err(), or returns early
// with an error if the radio cannot be used.
type ScanningDevice interface {
	Scan(ctx context.Context, allowDup bool, handler func(Advertisement)) error
}

// ScanningDeviceFunc adapts a function to the ScanningDevice interface.
type ScanningDeviceFunc func(ctx context.Context, allowDup bool, handler func(Advertisement)) error

func (f ScanningDeviceFunc) Scan(ctx context.Context, allowDup bool, handler func(Advertisement)) error {
	return f(ctx, allowDup, handler)
}
