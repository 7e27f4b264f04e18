// internal/bluetooth/permissions_test.go
package bluetooth

import (
	"context"
	"errors"
	"testing"
)

func TestSocketPermissionRequester(t *testing.T) {
	tests := []struct {
		name     string
		probeErr error
		wantBT   PermissionStatus
	}{
		{"socket allowed", nil, PermissionGranted},
		{"socket refused", errors.New("operation not permitted"), PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &SocketPermissionRequester{probe: func() error { return tt.probeErr }}

			got, err := r.RequestPermissions(context.Background(), RequiredPermissions)
			if err != nil {
				t.Fatalf("RequestPermissions() error = %v", err)
			}
			if got[PermissionLocation] != PermissionGranted {
				t.Errorf("location = %s, want granted", got[PermissionLocation])
			}
			if got[PermissionBluetoothScan] != tt.wantBT || got[PermissionBluetoothConnect] != tt.wantBT {
				t.Errorf("bluetooth permissions = %v, want %s", got, tt.wantBT)
			}
		})
	}
}
