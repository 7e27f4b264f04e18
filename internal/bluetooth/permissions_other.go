//go:build !linux

// internal/bluetooth/permissions_other.go
package bluetooth

import "errors"

func probeBluetoothSocket() error {
	return errors.New("bluetooth sockets are only supported on linux")
}
