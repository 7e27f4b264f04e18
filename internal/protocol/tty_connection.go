// internal/protocol/tty_connection.go
package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"meter-print-service/internal/model"
)

// TTYConnection implements DeviceProtocol for an rfcomm tty (/dev/rfcommN)
type TTYConnection struct {
	config *TTYConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.Mutex
	stats  statsRecorder
}

// NewTTYConnection creates a new tty connection
func NewTTYConnection(config *TTYConfig, logger *zap.Logger) DeviceProtocol {
	return &TTYConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "tty"),
			zap.String("port", config.Port),
			zap.String("address", config.Address),
		),
	}
}

// Open opens the tty
func (tc *TTYConnection) Open(ctx context.Context) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.port != nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	tc.logger.Info("Opening rfcomm tty", zap.Int("baud_rate", tc.config.BaudRate))

	mode := &serial.Mode{
		BaudRate: tc.config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(tc.config.Port, mode)
	if err != nil {
		tc.stats.failed()
		ports, _ := serial.GetPortsList()
		tc.logger.Error("Failed to open rfcomm tty", zap.Error(err), zap.Strings("available_ports", ports))
		return fmt.Errorf("failed to open tty %s: %w", tc.config.Port, err)
	}

	tc.port = port
	tc.stats.connected(true)
	tc.logger.Info("Rfcomm tty opened successfully")
	return nil
}

// Close closes the tty
func (tc *TTYConnection) Close() error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.port == nil {
		return nil
	}

	err := tc.port.Close()
	tc.port = nil
	tc.stats.connected(false)
	if err != nil {
		return fmt.Errorf("failed to close tty: %w", err)
	}
	return nil
}

// IsOpen returns whether the tty is open
func (tc *TTYConnection) IsOpen() bool {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	return tc.port != nil
}

// Write writes data and waits for the output buffer to drain
func (tc *TTYConnection) Write(ctx context.Context, data []byte) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.port == nil {
		return fmt.Errorf("tty not open")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start := time.Now()
	n, err := tc.port.Write(data)
	if err != nil {
		tc.stats.failed()
		return fmt.Errorf("failed to write to tty: %w", err)
	}
	if n != len(data) {
		tc.stats.failed()
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}
	if err := tc.port.Drain(); err != nil {
		tc.stats.failed()
		return fmt.Errorf("failed to drain tty: %w", err)
	}

	tc.stats.written(n, time.Since(start))
	tc.logger.Debug("Tty write completed", zap.Int("bytes", n))
	return nil
}

// GetProtocolType returns the protocol type
func (tc *TTYConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeSerial
}

// Stats returns a snapshot of the link counters
func (tc *TTYConnection) Stats() ProtocolStats {
	return tc.stats.snapshot()
}
