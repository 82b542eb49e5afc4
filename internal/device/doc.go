// Package device defines the narrow view of a Bluetooth Low Energy central
// that blegate needs: something that scans and reports advertisements.
//
// Concrete backends live in sub-packages (go-ble, tinygo) and are selected
// through internal/devicefactory.
package device
