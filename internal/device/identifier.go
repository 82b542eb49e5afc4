package device

import (
	"fmt"
	"strings"
)

// NormalizeIdentifier converts a peripheral identifier to its comparison form:
// trimmed, lowercase, with '-' and ':' separators removed.
//
// CoreBluetooth reports "01234567-89AB-CDEF-0123-456789ABCDEF" while go-ble
// lowercases it; BlueZ reports MAC addresses with colons. All of them collapse
// to the same key here.
func NormalizeIdentifier(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.NewReplacer("-", "", ":", "").Replace(id)
}

// SameIdentifier reports whether a and b name the same peripheral.
func SameIdentifier(a, b string) bool {
	na := NormalizeIdentifier(a)
	return na != "" && na == NormalizeIdentifier(b)
}

// ValidateIdentifier checks that id is usable as a scan target and returns it trimmed.
func ValidateIdentifier(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("device identifier cannot be empty")
	}
	for _, r := range NormalizeIdentifier(trimmed) {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", fmt.Errorf("invalid device identifier %q: expected a hex UUID or MAC address", id)
		}
	}
	return trimmed, nil
}
