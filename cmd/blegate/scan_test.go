package main

import (
	"strings"
	"testing"

	"github.com/srg/blegate/internal/device"
	"github.com/srg/blegate/internal/testutils"
	"github.com/srg/blegate/session"
	"github.com/stretchr/testify/suite"
)

type ScanCommandTestSuite struct {
	CommandTestSuite
}

func (s *ScanCommandTestSuite) TestTableSortedBySignal() {
	s.WithAdvertisements(
		testutils.NewAdvertisement(TestDeviceAddress2, "", -70),
		testutils.NewAdvertisement(TestDeviceAddress1, "Phone", -40),
	)

	out, err := s.ExecuteCommand("scan", "--duration", "50ms")
	s.Require().NoError(err)

	testutils.NewTextAsserter(s.T()).Assert(out.Stdout, `
NAME     IDENTIFIER         RSSI     FIRST SEEN
Phone    AA:BB:CC:DD:EE:FF  -40 dBm  +0s
Unknown  11:22:33:44:55:66  -70 dBm  +0s
`)
}

func (s *ScanCommandTestSuite) TestLongNamesTruncated() {
	s.WithAdvertisements(testutils.NewAdvertisement(TestDeviceAddress1, "Living Room Soundbar Pro", -40))

	out, err := s.ExecuteCommand("scan", "-d", "50ms")
	s.Require().NoError(err)
	s.Contains(out.Stdout, "Living Room Sound...")
}

func (s *ScanCommandTestSuite) TestNoDevices() {
	out, err := s.ExecuteCommand("scan", "-d", "50ms")
	s.Require().NoError(err)
	testutils.NewTextAsserter(s.T()).Assert(out.Stdout, "No devices discovered")
}

func (s *ScanCommandTestSuite) TestJSON() {
	s.WithAdvertisements(
		testutils.NewAdvertisement(TestDeviceAddress2, "Speaker", -70),
		testutils.NewAdvertisement(TestDeviceAddress1, "Phone", -40),
	)

	out, err := s.ExecuteCommand("scan", "-d", "50ms", "--format", "json")
	s.Require().NoError(err)

	testutils.NewJSONAsserter(s.T()).Assert(out.Stdout, `[
  {"id": "AA:BB:CC:DD:EE:FF", "name": "Phone", "rssi": -40, "seen_at": "<<PRESENCE>>"},
  {"id": "11:22:33:44:55:66", "name": "Speaker", "rssi": -70, "seen_at": "<<PRESENCE>>"}
]`)
}

func (s *ScanCommandTestSuite) TestJSONEmpty() {
	out, err := s.ExecuteCommand("scan", "-d", "50ms", "-f", "json")
	s.Require().NoError(err)
	testutils.NewTextAsserter(s.T()).Assert(out.Stdout, "[]")
}

func (s *ScanCommandTestSuite) TestDuplicatesListedOnce() {
	s.WithAdvertisements(
		testutils.NewAdvertisement(TestDeviceAddress1, "Phone", -40),
		testutils.NewAdvertisement("aa-bb-cc-dd-ee-ff", "Phone", -45),
	)

	out, err := s.ExecuteCommand("scan", "-d", "50ms", "-f", "json", "--allow-duplicates")
	s.Require().NoError(err)

	s.Equal(1, strings.Count(out.Stdout, `"name": "Phone"`))
	s.True(s.Device.AllowDuplicates())
}

func (s *ScanCommandTestSuite) TestUnavailable() {
	s.FactoryErr = device.ErrBluetoothOff

	out, err := s.ExecuteCommand("scan", "-d", "50ms")
	s.Require().ErrorIs(err, session.ErrAdapterUnavailable)
	s.Empty(out.Stdout)
	s.Equal(exitUnavailable, ExitCode(err))
}

func (s *ScanCommandTestSuite) TestInvalidArguments() {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"format", []string{"scan", "--format", "text"}, "invalid format 'text'"},
		{"duration", []string{"scan", "--duration", "0s"}, "duration must be positive"},
		{"positional", []string{"scan", TestDeviceAddress1}, "unknown command"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.ExecuteCommand(tt.args...)
			s.Require().Error(err)
			s.Contains(err.Error(), tt.wantErr)
			s.Equal(0, s.Device.ScanCalls())
		})
	}
}

func TestScanCommandTestSuite(t *testing.T) {
	suite.Run(t, new(ScanCommandTestSuite))
}
