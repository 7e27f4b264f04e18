//go:build linux

// internal/bluetooth/permissions_linux.go
package bluetooth

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func probeBluetoothSocket() error {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return fmt.Errorf("cannot open bluetooth socket: %w", err)
	}
	return unix.Close(fd)
}
