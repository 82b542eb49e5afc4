package devicefactory

import (
	"fmt"

	"github.com/srg/blegate/internal/device"
	goble "github.com/srg/blegate/internal/device/go-ble"
	"github.com/srg/blegate/internal/device/tinygo"
)

// Backend names accepted by DeviceFactory
const (
	BackendGoBLE  = "go-ble"
	BackendTinyGo = "tinygo"
)

// Backends lists the supported backend names, default first.
var Backends = []string{BackendGoBLE, BackendTinyGo}

// DeviceFactory creates a device.ScanningDevice for the named backend.
// An empty name selects go-ble.
// This is a variable so that it can be overridden in tests.
var DeviceFactory = func(backend string) (device.ScanningDevice, error) {
	switch backend {
	case "", BackendGoBLE:
		return goble.NewScanner()
	case BackendTinyGo:
		return tinygo.NewScanner()
	default:
		return nil, fmt.Errorf("%w: backend %q (must be one of %v)", device.ErrUnsupported, backend, Backends)
	}
}
