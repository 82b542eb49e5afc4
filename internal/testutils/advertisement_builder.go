package testutils

import (
	"github.com/srg/blegate/internal/device"
	"github.com/stretchr/testify/mock"
)

// MockAdvertisement mocks device.Advertisement
type MockAdvertisement struct {
	mock.Mock
}

func (m *MockAdvertisement) Addr() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAdvertisement) LocalName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAdvertisement) RSSI() int {
	args := m.Called()
	return args.Int(0)
}

// AdvertisementBuilder builds mocked advertisements for testing.
// Accessors that were never configured have no expectation, so a test fails
// loudly if the code under test reads them.
type AdvertisementBuilder struct {
	address string
	name    string
	rssi    int

	addressSet bool
	nameSet    bool
	rssiSet    bool
}

// NewAdvertisementBuilder creates a new AdvertisementBuilder
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{}
}

// WithAddress sets the peripheral identifier.
func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.address = addr
	b.addressSet = true
	return b
}

// WithName sets the local name. An empty name is a valid, explicit value.
func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.name = name
	b.nameSet = true
	return b
}

// WithRSSI sets the signal strength.
func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.rssi = rssi
	b.rssiSet = true
	return b
}

// Build creates the mock. Expectations are optional (Maybe) so a duplicate
// report that is filtered early does not fail AssertExpectations.
func (b *AdvertisementBuilder) Build() *MockAdvertisement {
	adv := &MockAdvertisement{}
	if b.addressSet {
		adv.On("Addr").Return(b.address).Maybe()
	}
	if b.nameSet {
		adv.On("LocalName").Return(b.name).Maybe()
	}
	if b.rssiSet {
		adv.On("RSSI").Return(b.rssi).Maybe()
	}
	return adv
}

// NewAdvertisement is shorthand for a fully populated advertisement.
func NewAdvertisement(addr, name string, rssi int) device.Advertisement {
	return NewAdvertisementBuilder().WithAddress(addr).WithName(name).WithRSSI(rssi).Build()
}
