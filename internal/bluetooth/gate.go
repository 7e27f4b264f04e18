// internal/bluetooth/gate.go
package bluetooth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"meter-print-service/internal/model"
)

// Gate checks permissions and adapter state before discovery or connect.
// Nothing is cached: both can change between calls.
type Gate struct {
	permissions PermissionRequester
	provider    *Provider
	logger      *zap.Logger
}

// NewGate creates a readiness gate. A nil requester skips the permission step.
func NewGate(permissions PermissionRequester, provider *Provider, logger *zap.Logger) *Gate {
	return &Gate{
		permissions: permissions,
		provider:    provider,
		logger:      logger.With(zap.String("component", "bluetooth_gate")),
	}
}

// EnsureReady fails with ErrPermissionDenied or ErrBluetoothUnavailable.
// A disabled adapter triggers an enable request whose failure is only logged.
func (g *Gate) EnsureReady(ctx context.Context) error {
	if err := g.checkPermissions(ctx); err != nil {
		return err
	}

	adapter, err := g.provider.Adapter(ctx)
	if err != nil {
		return err
	}

	enabled, err := adapter.IsEnabled(ctx)
	if err != nil {
		return model.NewPrintError(model.ErrBluetoothUnavailable, "failed to query adapter state", err)
	}
	if !enabled {
		if err := adapter.RequestEnable(ctx); err != nil {
			g.logger.Warn("Bluetooth enable request failed", zap.Error(err))
		}
	}
	return nil
}

func (g *Gate) checkPermissions(ctx context.Context) error {
	if g.permissions == nil {
		return nil
	}

	result, err := g.permissions.RequestPermissions(ctx, RequiredPermissions)
	if err != nil {
		return model.NewPrintError(model.ErrPermissionDenied, "permission request failed", err)
	}

	for _, p := range RequiredPermissions {
		if result[p] != PermissionGranted {
			g.logger.Warn("Bluetooth permission not granted",
				zap.String("permission", string(p)),
				zap.String("status", string(result[p])),
			)
			return model.NewPrintError(model.ErrPermissionDenied, fmt.Sprintf("%s not granted", p), nil)
		}
	}
	return nil
}
