// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventPrinterConnected EventType = "PRINTER_CONNECTED"
	EventPrinterError     EventType = "PRINTER_ERROR"
	EventScanCompleted    EventType = "SCAN_COMPLETED"
	EventPrintCompleted   EventType = "PRINT_COMPLETED"
	EventPrintFailed      EventType = "PRINT_FAILED"
	EventWidthChanged     EventType = "WIDTH_CHANGED"
	EventPrinterForgotten EventType = "PRINTER_FORGOTTEN"
)

// PrinterEvent is pushed to websocket subscribers after each operation
type PrinterEvent struct {
	ID        uuid.UUID `json:"id"`
	EventType EventType `json:"event_type"`
	Address   string    `json:"address,omitempty"`
	Label     LabelKind `json:"label,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPrinterEvent stamps a new event
func NewPrinterEvent(eventType EventType, address string) PrinterEvent {
	return PrinterEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Address:   address,
		Timestamp: time.Now(),
	}
}

// WithError attaches a failure to the event
func (e PrinterEvent) WithError(err error) PrinterEvent {
	if err != nil {
		e.Error = err.Error()
		e.Message = UserMessage(err)
	}
	return e
}
