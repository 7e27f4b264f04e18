// internal/zpl/ticket.go
package zpl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TicketFields are the printed values of a reading receipt. Values are
// printed verbatim; formatting money and counts is the caller's job.
type TicketFields struct {
	Title           string `json:"title"`
	ReceiptNumber   string `json:"receipt_number"`
	Customer        string `json:"customer"`
	Lot             string `json:"lot"`
	Meter           string `json:"meter"`
	Sector          string `json:"sector"`
	ReadingDate     string `json:"reading_date"`
	DueDate         string `json:"due_date"`
	PreviousReading string `json:"previous_reading"`
	CurrentReading  string `json:"current_reading"`
	Consumption     string `json:"consumption"`
	Tariff          string `json:"tariff"`
	Subtotal        string `json:"subtotal"`
	Total           string `json:"total"`
	Penalty         string `json:"penalty"`
	PenaltyNote     string `json:"penalty_note"`
	ClosingMessage  string `json:"closing_message"`
}

// DefaultTicketFields returns the sample receipt printed when nothing is overridden
func DefaultTicketFields() TicketFields {
	return TicketFields{
		Title:           "Comprobante de lectura",
		ReceiptNumber:   "Comprobante #20250925-123-ABC",
		Customer:        "Juan Perez",
		Lot:             "A1",
		Meter:           "123456",
		Sector:          "CRI",
		ReadingDate:     "2003-02-15",
		DueDate:         "2003-03-15",
		PreviousReading: "100",
		CurrentReading:  "118",
		Consumption:     "18",
		Tariff:          "CRC 500",
		Subtotal:        "CRC 9,000",
		Total:           "CRC 9,000",
		Penalty:         "CRC 0",
		PenaltyNote:     "",
		ClosingMessage:  "Gracias por su pago.",
	}
}

// UnmarshalJSON decodes over DefaultTicketFields, so absent keys keep the sample values
func (f *TicketFields) UnmarshalJSON(data []byte) error {
	type plain TicketFields
	fields := plain(DefaultTicketFields())
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*f = TicketFields(fields)
	return nil
}

// HasPenaltyNote reports whether the "Motivo:" line is printed
func (f TicketFields) HasPenaltyNote() bool {
	return strings.TrimSpace(f.PenaltyNote) != ""
}

// Ticket renders the itemized receipt. Label length follows the content.
func Ticket(opts Options, f TicketFields) string {
	const x = 20
	w := PrintWidth(opts.Width)
	c := newCanvas(20)

	c.text(f.Title, 40, x)
	c.text(f.ReceiptNumber, 28, x)
	c.skip(2)
	c.rule(w)

	c.text("Cliente: "+f.Customer, 30, x)
	c.text(fmt.Sprintf("Lote: %s   Medidor: %s", f.Lot, f.Meter), 30, x)
	c.text("Sector: "+f.Sector, 30, x)
	c.text(fmt.Sprintf("Fecha: %s   Vence: %s", f.ReadingDate, f.DueDate), 28, x)
	c.rule(w)

	c.text("Lect. ant.: "+f.PreviousReading, 30, x)
	c.text("Lect. act.: "+f.CurrentReading, 30, x)
	c.text("Consumo (m³): "+f.Consumption, 30, x)
	c.rule(w)

	c.text("Tarifa x m3: "+f.Tariff, 30, x)
	c.text("Subtotal: "+f.Subtotal, 30, x)
	c.text("Multa:    "+f.Penalty, 30, x)
	if f.HasPenaltyNote() {
		c.text("Motivo: "+f.PenaltyNote, 28, x)
	}
	c.rule(w)

	c.text("Total: "+f.Total, 44, x)
	c.bar(0, w, 36)
	c.skip(50)

	c.text(f.ClosingMessage, 32, 80)
	c.skip(20)

	return c.label(Options{Width: float64(w), TearOffset: opts.TearOffset}, c.y+20)
}
