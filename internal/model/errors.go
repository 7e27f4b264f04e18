// internal/model/errors.go
package model

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the printing subsystem. Match with errors.Is.
var (
	ErrPermissionDenied     = errors.New("bluetooth permissions denied")
	ErrInvalidAddress       = errors.New("invalid bluetooth address")
	ErrBluetoothUnavailable = errors.New("bluetooth unavailable")
	ErrNoPrinterSelected    = errors.New("no printer selected")
	ErrTransmissionFailed   = errors.New("zpl transmission failed")
	ErrBusy                 = errors.New("printer operation in progress")
	ErrInvalidInput         = errors.New("invalid print request")
)

// PrintError carries a failure kind, a readable message and the underlying cause
type PrintError struct {
	Kind    error
	Message string
	Err     error
}

// NewPrintError builds a PrintError of the given kind
func NewPrintError(kind error, message string, err error) *PrintError {
	return &PrintError{Kind: kind, Message: message, Err: err}
}

func (e *PrintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is/As
func (e *PrintError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// userMessages are the operator-facing texts shown by the field app
var userMessages = []struct {
	kind    error
	message string
}{
	{ErrPermissionDenied, "Permisos Bluetooth denegados."},
	{ErrInvalidAddress, "Usa MAC clásica AA:BB:CC:DD:EE:FF."},
	{ErrBluetoothUnavailable, "Bluetooth no disponible."},
	{ErrNoPrinterSelected, "Sin impresora seleccionada."},
	{ErrTransmissionFailed, "No se pudo escribir ZPL."},
	{ErrBusy, "Otra operación de impresión está en curso."},
	{ErrInvalidInput, "Datos de impresión inválidos."},
}

// UserMessage returns the operator-facing message for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if errors.Is(err, m.kind) {
			return m.message
		}
	}
	return err.Error()
}
