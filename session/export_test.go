package session

import "github.com/srg/blegate/internal/device"

// HandlerForTest exposes the advertisement handler to external tests.
func HandlerForTest(s *Session) func(device.Advertisement) {
	return s.handleAdvertisement
}
