// internal/printer/connection.go
package printer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"meter-print-service/internal/bluetooth"
	"meter-print-service/internal/model"
	"meter-print-service/internal/utils"
)

// AddressStore persists the default printer address
type AddressStore interface {
	SavedAddress(ctx context.Context) (string, bool)
	SaveAddress(ctx context.Context, address string) error
}

// ConnectionManager ensures a printer is connected and remembers it.
// It holds no connection objects; the adapter is queried every time.
type ConnectionManager struct {
	gate     *bluetooth.Gate
	provider *bluetooth.Provider
	store    AddressStore
	logger   *zap.Logger
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(gate *bluetooth.Gate, provider *bluetooth.Provider, store AddressStore, logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		gate:     gate,
		provider: provider,
		store:    store,
		logger:   logger,
	}
}

// Connect makes address the connected default printer and returns it
func (m *ConnectionManager) Connect(ctx context.Context, address string) (string, error) {
	if !model.IsValidMAC(address) {
		return "", model.NewPrintError(model.ErrInvalidAddress, fmt.Sprintf("%q is not a classic bluetooth address", address), nil)
	}

	if err := m.gate.EnsureReady(ctx); err != nil {
		return "", err
	}

	adapter, err := m.provider.Adapter(ctx)
	if err != nil {
		return "", err
	}

	plog := utils.NewPrinterLogger(m.logger, address)

	connected, err := adapter.IsDeviceConnected(ctx, address)
	if err != nil {
		return "", model.NewPrintError(model.ErrBluetoothUnavailable, "failed to query connection state", err)
	}
	if !connected {
		if err := adapter.ConnectToDevice(ctx, address); err != nil {
			plog.LogConnection("connect", false, err)
			return "", model.NewPrintError(model.ErrBluetoothUnavailable, "failed to connect to printer", err)
		}
		plog.LogConnection("connect", true, nil)
	}

	if err := m.store.SaveAddress(ctx, address); err != nil {
		plog.Warn("Connected but could not remember printer", zap.Error(err))
	}
	return address, nil
}

// Saved returns the remembered default printer
func (m *ConnectionManager) Saved(ctx context.Context) (string, bool) {
	return m.store.SavedAddress(ctx)
}
