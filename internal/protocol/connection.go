// internal/protocol/connection.go
package protocol

import "time"

// RFCOMMConfig represents a direct RFCOMM socket connection
type RFCOMMConfig struct {
	Address        string        `json:"address"`
	Channel        int           `json:"channel"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout"`
}

// TTYConfig represents an rfcomm tty bound by the system (rfcomm bind)
type TTYConfig struct {
	Address      string        `json:"address"`
	Port         string        `json:"port"`
	BaudRate     int           `json:"baud_rate"`
	WriteTimeout time.Duration `json:"write_timeout"`
}
