// internal/protocol/factory.go
package protocol

import (
	"fmt"

	"go.uber.org/zap"

	"meter-print-service/internal/config"
	"meter-print-service/internal/model"
)

// CreateProtocol builds the link used to reach address with the configured transport
func CreateProtocol(address string, cfg *config.BluetoothConfig, logger *zap.Logger) (DeviceProtocol, error) {
	if !model.IsValidMAC(address) {
		return nil, fmt.Errorf("invalid printer address: %q", address)
	}

	switch cfg.Transport {
	case "rfcomm", "":
		channel := cfg.RFCOMMChannel
		if channel == 0 {
			channel = 1
		}
		return NewRFCOMMConnection(&RFCOMMConfig{
			Address:        address,
			Channel:        channel,
			ConnectTimeout: cfg.ConnectTimeout,
			WriteTimeout:   cfg.WriteTimeout,
		}, logger), nil

	case "tty":
		if cfg.TTYPort == "" {
			return nil, fmt.Errorf("bluetooth.tty_port is required for tty transport")
		}
		baud := cfg.BaudRate
		if baud == 0 {
			baud = 115200
		}
		logger.Info("Creating tty protocol",
			zap.String("port", cfg.TTYPort),
			zap.Int("baud_rate", baud),
		)
		return NewTTYConnection(&TTYConfig{
			Address:      address,
			Port:         cfg.TTYPort,
			BaudRate:     baud,
			WriteTimeout: cfg.WriteTimeout,
		}, logger), nil

	default:
		return nil, fmt.Errorf("unsupported bluetooth transport: %s", cfg.Transport)
	}
}
