// internal/bluetooth/gate_test.go
package bluetooth_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"meter-print-service/internal/bluetooth"
	"meter-print-service/internal/bluetooth/bluetoothtest"
	"meter-print-service/internal/model"
)

func TestGateGrantedAndEnabled(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	perms := bluetoothtest.GrantAll()
	gate := bluetooth.NewGate(perms, bluetooth.StaticProvider(adapter), zaptest.NewLogger(t))

	if err := gate.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if adapter.CallCount("RequestEnable") != 0 {
		t.Error("RequestEnable called on an enabled adapter")
	}

	// not cached
	if err := gate.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() second call error = %v", err)
	}
	if perms.Calls != 2 || adapter.CallCount("IsEnabled") != 2 {
		t.Errorf("permissions asked %d times, state queried %d times; want 2 and 2",
			perms.Calls, adapter.CallCount("IsEnabled"))
	}
}

func TestGateDeniedPermission(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	perms := bluetoothtest.GrantAll()
	perms.Status[bluetooth.PermissionBluetoothConnect] = bluetooth.PermissionDenied
	gate := bluetooth.NewGate(perms, bluetooth.StaticProvider(adapter), zaptest.NewLogger(t))

	err := gate.EnsureReady(context.Background())
	if !errors.Is(err, model.ErrPermissionDenied) {
		t.Fatalf("EnsureReady() error = %v, want ErrPermissionDenied", err)
	}
	if len(adapter.Calls()) != 0 {
		t.Errorf("adapter touched after denial: %v", adapter.Calls())
	}
}

func TestGateRequesterError(t *testing.T) {
	perms := &bluetoothtest.FakePermissions{Err: errors.New("dialog dismissed")}
	gate := bluetooth.NewGate(perms, bluetooth.StaticProvider(bluetoothtest.NewFakeAdapter()), zaptest.NewLogger(t))

	if err := gate.EnsureReady(context.Background()); !errors.Is(err, model.ErrPermissionDenied) {
		t.Fatalf("EnsureReady() error = %v, want ErrPermissionDenied", err)
	}
}

func TestGateWithoutRequesterIsNoOp(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	gate := bluetooth.NewGate(nil, bluetooth.StaticProvider(adapter), zaptest.NewLogger(t))

	if err := gate.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
}

func TestGateEnableFailureIsIgnored(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	adapter.Enabled = false
	adapter.EnableErr = errors.New("user declined")
	gate := bluetooth.NewGate(nil, bluetooth.StaticProvider(adapter), zaptest.NewLogger(t))

	if err := gate.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if adapter.CallCount("RequestEnable") != 1 {
		t.Errorf("RequestEnable called %d times, want 1", adapter.CallCount("RequestEnable"))
	}
}

func TestGateUnavailableAdapter(t *testing.T) {
	provider := bluetooth.NewProvider(func(context.Context) (bluetooth.Adapter, error) {
		return nil, errors.New("no controller")
	})
	gate := bluetooth.NewGate(nil, provider, zaptest.NewLogger(t))

	if err := gate.EnsureReady(context.Background()); !errors.Is(err, model.ErrBluetoothUnavailable) {
		t.Fatalf("EnsureReady() error = %v, want ErrBluetoothUnavailable", err)
	}
}
