// internal/bluetooth/adapter.go
package bluetooth

import (
	"context"
	"fmt"
	"sync"

	"meter-print-service/internal/model"
	"meter-print-service/internal/protocol"
)

// Adapter is the platform Bluetooth Classic stack as seen by the printer code.
// Connection state lives in the adapter; callers query before acting.
type Adapter interface {
	IsEnabled(ctx context.Context) (bool, error)
	RequestEnable(ctx context.Context) error
	BondedDevices(ctx context.Context) ([]model.RawDevice, error)
	IsDeviceConnected(ctx context.Context, address string) (bool, error)
	ConnectToDevice(ctx context.Context, address string) error
	WriteToDevice(ctx context.Context, address string, payload string) error
}

// AdapterFactory acquires the platform adapter
type AdapterFactory func(ctx context.Context) (Adapter, error)

// Provider hands out a lazily acquired adapter. A successful acquisition is
// kept for the life of the process; failures are retried on the next call.
type Provider struct {
	mu      sync.Mutex
	factory AdapterFactory
	adapter Adapter
}

// NewProvider creates a provider around factory
func NewProvider(factory AdapterFactory) *Provider {
	return &Provider{factory: factory}
}

// StaticProvider wraps an already acquired adapter
func StaticProvider(adapter Adapter) *Provider {
	return &Provider{adapter: adapter}
}

// Adapter returns the cached adapter, acquiring it on first use
func (p *Provider) Adapter(ctx context.Context) (Adapter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.adapter != nil {
		return p.adapter, nil
	}
	if p.factory == nil {
		return nil, model.NewPrintError(model.ErrBluetoothUnavailable, "no bluetooth adapter configured", nil)
	}

	adapter, err := p.factory(ctx)
	if err != nil {
		return nil, model.NewPrintError(model.ErrBluetoothUnavailable, "failed to acquire bluetooth adapter", err)
	}
	if adapter == nil {
		return nil, model.NewPrintError(model.ErrBluetoothUnavailable, "bluetooth adapter not available", nil)
	}

	p.adapter = adapter
	return adapter, nil
}

// Acquired reports whether an adapter has been obtained
func (p *Provider) Acquired() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.adapter != nil
}

// LinkStats returns per-printer link counters when the adapter keeps them
func (p *Provider) LinkStats() map[string]protocol.ProtocolStats {
	p.mu.Lock()
	adapter := p.adapter
	p.mu.Unlock()

	if s, ok := adapter.(interface {
		LinkStats() map[string]protocol.ProtocolStats
	}); ok {
		return s.LinkStats()
	}
	return nil
}

// Close releases the adapter if it holds resources
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	closer, ok := p.adapter.(interface{ Close() error })
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("failed to close bluetooth adapter: %w", err)
	}
	p.adapter = nil
	return nil
}
