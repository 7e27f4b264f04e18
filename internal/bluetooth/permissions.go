// internal/bluetooth/permissions.go
package bluetooth

import (
	"context"
)

// Permission is a runtime capability the process must hold to use Bluetooth
type Permission string

const (
	PermissionLocation         Permission = "location"
	PermissionBluetoothScan    Permission = "bluetooth_scan"
	PermissionBluetoothConnect Permission = "bluetooth_connect"
)

// RequiredPermissions are requested together before every scan or connect
var RequiredPermissions = []Permission{
	PermissionLocation,
	PermissionBluetoothScan,
	PermissionBluetoothConnect,
}

// PermissionStatus is the outcome of a permission request
type PermissionStatus string

const (
	PermissionGranted PermissionStatus = "granted"
	PermissionDenied  PermissionStatus = "denied"
)

// PermissionRequester asks the platform for runtime grants in one batch
type PermissionRequester interface {
	RequestPermissions(ctx context.Context, perms []Permission) (map[Permission]PermissionStatus, error)
}

// SocketPermissionRequester grants Bluetooth permissions when the process is
// allowed to open AF_BLUETOOTH sockets. Location is not gated on this platform.
type SocketPermissionRequester struct {
	probe func() error
}

// NewSocketPermissionRequester creates a requester backed by a socket probe
func NewSocketPermissionRequester() *SocketPermissionRequester {
	return &SocketPermissionRequester{probe: probeBluetoothSocket}
}

// RequestPermissions implements PermissionRequester
func (r *SocketPermissionRequester) RequestPermissions(ctx context.Context, perms []Permission) (map[Permission]PermissionStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bt := PermissionGranted
	if err := r.probe(); err != nil {
		bt = PermissionDenied
	}

	result := make(map[Permission]PermissionStatus, len(perms))
	for _, p := range perms {
		switch p {
		case PermissionLocation:
			result[p] = PermissionGranted
		default:
			result[p] = bt
		}
	}
	return result, nil
}
