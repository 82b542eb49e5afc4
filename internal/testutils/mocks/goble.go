// Package mocks holds testify mocks for the go-ble types blegate touches.
package mocks

import (
	"context"

	"github.com/go-ble/ble"
	"github.com/stretchr/testify/mock"
)

// MockAdvertisement mocks ble.Advertisement. Only the accessors blegate reads
// are mocked; the embedded interface is nil and panics if anything else is used.
type MockAdvertisement struct {
	ble.Advertisement
	mock.Mock
}

func (m *MockAdvertisement) LocalName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAdvertisement) RSSI() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockAdvertisement) Addr() ble.Addr {
	args := m.Called()
	if a := args.Get(0); a != nil {
		return a.(ble.Addr)
	}
	return nil
}

// MockDevice mocks the Scan and Stop methods of ble.Device.
// Scan replays Advertisements through the handler and then blocks until ctx is done
// unless the mock expectation returns a non-nil error first.
type MockDevice struct {
	ble.Device
	mock.Mock

	Advertisements []ble.Advertisement
}

func (m *MockDevice) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error {
	args := m.Called(ctx, allowDup, h)
	if err := args.Error(0); err != nil {
		return err
	}
	for _, adv := range m.Advertisements {
		if ctx.Err() != nil {
			break
		}
		h(adv)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *MockDevice) Stop() error {
	args := m.Called()
	return args.Error(0)
}
