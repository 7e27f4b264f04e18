// internal/bluetooth/provider_test.go
package bluetooth_test

import (
	"context"
	"errors"
	"testing"

	"meter-print-service/internal/bluetooth"
	"meter-print-service/internal/bluetooth/bluetoothtest"
	"meter-print-service/internal/model"
)

func TestProviderCachesSuccessOnly(t *testing.T) {
	attempts := 0
	fake := bluetoothtest.NewFakeAdapter()
	provider := bluetooth.NewProvider(func(context.Context) (bluetooth.Adapter, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("bus not ready")
		}
		return fake, nil
	})
	ctx := context.Background()

	_, err := provider.Adapter(ctx)
	if !errors.Is(err, model.ErrBluetoothUnavailable) {
		t.Fatalf("first Adapter() error = %v, want ErrBluetoothUnavailable", err)
	}
	if provider.Acquired() {
		t.Fatal("failed acquisition was cached")
	}

	for i := 0; i < 3; i++ {
		got, err := provider.Adapter(ctx)
		if err != nil {
			t.Fatalf("Adapter() error = %v", err)
		}
		if got != fake {
			t.Fatal("Adapter() returned a different instance")
		}
	}
	if attempts != 2 {
		t.Errorf("factory called %d times, want 2", attempts)
	}
}

func TestProviderWithoutFactory(t *testing.T) {
	var provider bluetooth.Provider
	if _, err := provider.Adapter(context.Background()); !errors.Is(err, model.ErrBluetoothUnavailable) {
		t.Fatalf("Adapter() error = %v, want ErrBluetoothUnavailable", err)
	}
}
