package goble

import (
	"context"

	"github.com/go-ble/ble"
	"github.com/srg/blegate/internal/device"
)

// bleScanner wraps ble.Device to implement a device.ScanningDevice interface
type bleScanner struct {
	dev ble.Device
}

// Scan wraps the raw ble.Device.Scan to convert ble.Advertisement to the device.Advertisement
func (s *bleScanner) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	bleHandler := func(adv ble.Advertisement) {
		handler(NewBLEAdvertisement(adv))
	}
	return NormalizeError(s.dev.Scan(ctx, allowDup, bleHandler))
}

// NewScanner opens the platform central role and returns it as a device.ScanningDevice.
// On macOS this blocks until CoreBluetooth reports its state; a powered-off
// adapter surfaces as device.ErrBluetoothOff.
func NewScanner() (device.ScanningDevice, error) {
	dev, err := DeviceFactory()
	if err != nil {
		return nil, NormalizeError(err)
	}
	return &bleScanner{dev: dev}, nil
}
