// internal/model/printer.go
package model

import (
	"regexp"
)

const (
	// DefaultPrintWidth is 80 mm at 203 dpi.
	DefaultPrintWidth = 576
	// MinPrintWidth is the narrowest ^PW accepted.
	MinPrintWidth = 200
	// MaxPrintWidth caps stored widths so they fit a 32-bit int.
	MaxPrintWidth = 1<<31 - 1

	// UnknownDeviceName is shown for bonded devices that report no name.
	UnknownDeviceName = "Desconocida"
)

var classicMACPattern = regexp.MustCompile(`^[0-9A-Fa-f]{2}(:[0-9A-Fa-f]{2}){5}$`)

// IsValidMAC reports whether s is a classic Bluetooth address (AA:BB:CC:DD:EE:FF).
func IsValidMAC(s string) bool {
	return classicMACPattern.MatchString(s)
}

// ConnectionType represents how the printer link is opened
type ConnectionType string

const (
	ConnectionTypeRFCOMM ConnectionType = "RFCOMM"
	ConnectionTypeSerial ConnectionType = "SERIAL"
)

// RawDevice is a device record as reported by the platform Bluetooth stack.
// Field names differ between stacks; see discovery.Normalize.
type RawDevice map[string]interface{}

// ScanResult holds the device lists returned by a discovery pass
type ScanResult struct {
	Paired []RawDevice `json:"paired"`
	Found  []RawDevice `json:"found"`
}

// DiscoveredDevice is the normalized record shown in the printer picker
type DiscoveredDevice struct {
	Address *string `json:"address"`
	Name    string  `json:"name"`
}

// HasAddress reports whether the device can be selected for a connection
func (d DiscoveredDevice) HasAddress() bool {
	return d.Address != nil && *d.Address != ""
}

// LabelKind identifies one of the labels the service can produce
type LabelKind string

const (
	LabelHello     LabelKind = "hello"
	LabelBlackBar  LabelKind = "bar"
	LabelTicket    LabelKind = "ticket"
	LabelReceipt   LabelKind = "receipt"
	LabelSimple    LabelKind = "simple"
	LabelConfig    LabelKind = "config"
	LabelSafeWidth LabelKind = "safe-width"
)

// IsDiagnostic reports whether the kind is a fixed printer self-check payload
func (k LabelKind) IsDiagnostic() bool {
	switch k {
	case LabelSimple, LabelConfig, LabelSafeWidth:
		return true
	}
	return false
}
