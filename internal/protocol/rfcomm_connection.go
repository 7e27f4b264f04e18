// internal/protocol/rfcomm_connection.go
package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"meter-print-service/internal/model"
)

// RFCOMMConnection implements DeviceProtocol over an AF_BLUETOOTH stream socket
type RFCOMMConnection struct {
	config *RFCOMMConfig
	sock   rfcommSocket
	logger *zap.Logger
	mutex  sync.Mutex
	stats  statsRecorder
}

// NewRFCOMMConnection creates a new RFCOMM connection
func NewRFCOMMConnection(config *RFCOMMConfig, logger *zap.Logger) DeviceProtocol {
	return &RFCOMMConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "rfcomm"),
			zap.String("address", config.Address),
			zap.Int("channel", config.Channel),
		),
	}
}

// Open connects the socket
func (rc *RFCOMMConnection) Open(ctx context.Context) error {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if rc.sock != nil {
		return nil
	}

	if rc.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.config.ConnectTimeout)
		defer cancel()
	}

	rc.logger.Info("Opening RFCOMM connection")

	sock, err := dialRFCOMM(ctx, rc.config.Address, rc.config.Channel)
	if err != nil {
		rc.stats.failed()
		rc.logger.Error("Failed to open RFCOMM connection", zap.Error(err))
		return fmt.Errorf("failed to connect rfcomm %s channel %d: %w", rc.config.Address, rc.config.Channel, err)
	}

	rc.sock = sock
	rc.stats.connected(true)
	rc.logger.Info("RFCOMM connection opened successfully")
	return nil
}

// Close closes the socket
func (rc *RFCOMMConnection) Close() error {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if rc.sock == nil {
		return nil
	}

	err := rc.sock.Close()
	rc.sock = nil
	rc.stats.connected(false)
	if err != nil {
		return fmt.Errorf("failed to close rfcomm socket: %w", err)
	}

	rc.logger.Info("RFCOMM connection closed")
	return nil
}

// IsOpen returns whether the connection is open
func (rc *RFCOMMConnection) IsOpen() bool {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	return rc.sock != nil
}

// Write writes data to the socket
func (rc *RFCOMMConnection) Write(ctx context.Context, data []byte) error {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if rc.sock == nil {
		return fmt.Errorf("rfcomm connection not open")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deadline := time.Time{}
	if rc.config.WriteTimeout > 0 {
		deadline = time.Now().Add(rc.config.WriteTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := rc.sock.SetWriteDeadline(deadline); err != nil {
		rc.logger.Debug("Write deadline not supported", zap.Error(err))
	}

	start := time.Now()
	n, err := rc.sock.Write(data)
	if err != nil {
		rc.stats.failed()
		return fmt.Errorf("failed to write to rfcomm socket: %w", err)
	}
	if n != len(data) {
		rc.stats.failed()
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	rc.stats.written(n, time.Since(start))
	rc.logger.Debug("RFCOMM write completed", zap.Int("bytes", n))
	return nil
}

// GetProtocolType returns the protocol type
func (rc *RFCOMMConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeRFCOMM
}

// Stats returns a snapshot of the link counters
func (rc *RFCOMMConnection) Stats() ProtocolStats {
	return rc.stats.snapshot()
}
