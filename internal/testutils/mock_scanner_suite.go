package testutils

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/blegate/internal/device"
	"github.com/srg/blegate/internal/devicefactory"
	"github.com/stretchr/testify/suite"
)

// MockScannerSuite swaps devicefactory.DeviceFactory for a ScriptedDevice.
//
// Usage:
//
//	type GateSuite struct {
//	    testutils.MockScannerSuite
//	}
//
//	func (s *GateSuite) SetupTest() {
//	    s.MockScannerSuite.SetupTest()
//	    s.WithAdvertisements(testutils.NewAdvertisement("AA:BB:CC:DD:EE:FF", "Phone", -40))
//	}
type MockScannerSuite struct {
	suite.Suite

	Logger *logrus.Logger

	// Device is returned by the factory for every backend.
	Device *ScriptedDevice
	// FactoryErr, when set, is returned by the factory instead of Device.
	FactoryErr error
	// Backends records the backend names the factory was asked for.
	Backends []string

	originalFactory func(string) (device.ScanningDevice, error)
}

// SetupSuite creates the suite logger.
func (s *MockScannerSuite) SetupSuite() {
	s.Logger = NewTestLogger()
}

// SetupTest installs a fresh ScriptedDevice behind the factory.
func (s *MockScannerSuite) SetupTest() {
	if s.Logger == nil {
		s.Logger = NewTestLogger()
	}
	s.Device = &ScriptedDevice{}
	s.FactoryErr = nil
	s.Backends = nil

	s.originalFactory = devicefactory.DeviceFactory
	devicefactory.DeviceFactory = func(backend string) (device.ScanningDevice, error) {
		s.Backends = append(s.Backends, backend)
		if s.FactoryErr != nil {
			return nil, s.FactoryErr
		}
		return s.Device, nil
	}
}

// TearDownTest restores the real factory.
func (s *MockScannerSuite) TearDownTest() {
	if s.originalFactory != nil {
		devicefactory.DeviceFactory = s.originalFactory
	}
}

// WithAdvertisements sets the advertisements the scripted device replays.
func (s *MockScannerSuite) WithAdvertisements(advs ...device.Advertisement) *ScriptedDevice {
	s.Device.Advertisements = append(s.Device.Advertisements, advs...)
	return s.Device
}

// WithInterval spaces replayed advertisements out.
func (s *MockScannerSuite) WithInterval(d time.Duration) *ScriptedDevice {
	s.Device.Interval = d
	return s.Device
}

// NewTestLogger returns a debug-level logger that writes nowhere unless
// BLEGATE_TEST_LOGS is set.
func NewTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	if !testLogsEnabled() {
		logger.SetOutput(io.Discard)
	}
	return logger
}
