// internal/billing/receipt.go
package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"meter-print-service/internal/zpl"
)

// NoPreviousReadingNumber is printed when the customer has never been read
const NoPreviousReadingNumber = "Comprobante sin lectura anterior"

// Reading is the customer's last stored meter reading
type Reading struct {
	ID   int64  `json:"id"`
	Date string `json:"reading_date"` // YYYY-MM-DD
}

// ReceiptInput carries everything needed to price and print one reading
type ReceiptInput struct {
	Customer        string          `json:"customer" binding:"required"`
	Lot             string          `json:"lot"`
	Meter           string          `json:"meter"`
	Sector          string          `json:"sector"`
	LastReading     *Reading        `json:"last_reading,omitempty"`
	Completed       bool            `json:"completed"`
	BillingDay      int             `json:"billing_day"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
	Tariff          decimal.Decimal `json:"tariff"`
	Penalty         decimal.Decimal `json:"penalty"`
	PenaltyNote     string          `json:"penalty_note"`
	ClosingMessage  string          `json:"closing_message"`
}

// Receipt is a priced reading ready to print
type Receipt struct {
	Number      string          `json:"number"`
	ReadingDate time.Time       `json:"reading_date"`
	DueDate     time.Time       `json:"due_date"`
	Consumption decimal.Decimal `json:"consumption"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`

	input ReceiptInput
}

// ReceiptNumber derives the receipt number from the previous reading
func ReceiptNumber(last *Reading) string {
	if last == nil || last.Date == "" {
		return NoPreviousReadingNumber
	}
	return fmt.Sprintf("Comprobante #%s%d", strings.ReplaceAll(last.Date, "-", ""), last.ID)
}

// Consumption is the metered volume; a meter that went backwards bills zero
func Consumption(previous, current decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, current.Sub(previous))
}

// Build prices a reading. Total is always consumption × tariff + penalty.
func Build(in ReceiptInput, now time.Time) (Receipt, error) {
	readingDate, err := ReadingDate(in.LastReading, in.Completed, in.BillingDay, now)
	if err != nil {
		return Receipt{}, fmt.Errorf("invalid last reading date: %w", err)
	}
	dueDate, err := DueDate(in.LastReading, in.Completed, in.BillingDay, now)
	if err != nil {
		return Receipt{}, fmt.Errorf("invalid last reading date: %w", err)
	}

	consumption := Consumption(in.PreviousReading, in.CurrentReading)
	subtotal := consumption.Mul(in.Tariff)

	return Receipt{
		Number:      ReceiptNumber(in.LastReading),
		ReadingDate: readingDate,
		DueDate:     dueDate,
		Consumption: consumption,
		Subtotal:    subtotal,
		Total:       subtotal.Add(in.Penalty),
		input:       in,
	}, nil
}

// TicketFields maps the receipt onto the printed ticket
func (r Receipt) TicketFields() zpl.TicketFields {
	f := zpl.DefaultTicketFields()
	f.ReceiptNumber = r.Number
	f.Customer = r.input.Customer
	f.Lot = r.input.Lot
	f.Meter = r.input.Meter
	f.Sector = r.input.Sector
	f.ReadingDate = r.ReadingDate.Format(DateLayout)
	f.DueDate = r.DueDate.Format(DateLayout)
	f.PreviousReading = FormatQuantity(r.input.PreviousReading)
	f.CurrentReading = FormatQuantity(r.input.CurrentReading)
	f.Consumption = FormatQuantity(r.Consumption)
	f.Tariff = FormatCRC(r.input.Tariff)
	f.Subtotal = FormatCRC(r.Subtotal)
	f.Penalty = FormatCRC(r.input.Penalty)
	f.Total = FormatCRC(r.Total)
	f.PenaltyNote = r.input.PenaltyNote
	if r.input.ClosingMessage != "" {
		f.ClosingMessage = r.input.ClosingMessage
	}
	return f
}

// BuildTicketFields prices a reading and returns the lines to print
func BuildTicketFields(in ReceiptInput, now time.Time) (zpl.TicketFields, error) {
	r, err := Build(in, now)
	if err != nil {
		return zpl.TicketFields{}, err
	}
	return r.TicketFields(), nil
}
