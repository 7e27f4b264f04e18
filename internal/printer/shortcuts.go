// internal/printer/shortcuts.go
package printer

import (
	"context"
	"fmt"

	"meter-print-service/internal/config"
	"meter-print-service/internal/model"
	"meter-print-service/internal/zpl"
)

// WidthSource supplies the persisted print width
type WidthSource interface {
	Width(ctx context.Context) int
}

// LabelRequest selects a label and its optional overrides
type LabelRequest struct {
	Kind       model.LabelKind   `json:"kind"`
	Height     *float64          `json:"height,omitempty"`
	TearOffset *float64          `json:"tear_offset,omitempty"`
	Fields     *zpl.TicketFields `json:"fields,omitempty"`
}

// Printer binds the label generators to the transmitter, using the stored
// width and the configured tear offsets
type Printer struct {
	tx     *Transmitter
	widths WidthSource
	cfg    config.PrinterConfig
}

// NewPrinter creates a new printer
func NewPrinter(tx *Transmitter, widths WidthSource, cfg config.PrinterConfig) *Printer {
	return &Printer{tx: tx, widths: widths, cfg: cfg}
}

// Transmitter returns the underlying transmitter
func (p *Printer) Transmitter() *Transmitter {
	return p.tx
}

// Render builds the ZPL for req without sending it
func (p *Printer) Render(ctx context.Context, req LabelRequest) (string, error) {
	if req.Kind.IsDiagnostic() {
		return diagnosticPayload(req.Kind), nil
	}

	opts := zpl.Options{Width: float64(p.widths.Width(ctx))}

	switch req.Kind {
	case model.LabelHello:
		opts.TearOffset = offsetOr(req.TearOffset, p.cfg.HelloTearOffset)
		return zpl.Hello(opts), nil

	case model.LabelBlackBar:
		opts.TearOffset = offsetOr(req.TearOffset, p.cfg.BarTearOffset)
		height := p.cfg.BarHeight
		if height == 0 {
			height = zpl.DefaultBarHeight
		}
		if req.Height != nil {
			height = *req.Height
		}
		return zpl.FullBlackBar(opts, height), nil

	case model.LabelTicket, model.LabelReceipt:
		opts.TearOffset = offsetOr(req.TearOffset, p.cfg.TicketTearOffset)
		fields := zpl.DefaultTicketFields()
		if req.Fields != nil {
			fields = *req.Fields
		}
		return zpl.Ticket(opts, fields), nil
	}

	return "", model.NewPrintError(model.ErrInvalidInput, fmt.Sprintf("unknown label kind %q", req.Kind), nil)
}

func offsetOr(override *float64, fallback float64) float64 {
	if override != nil {
		return *override
	}
	return fallback
}

func diagnosticPayload(kind model.LabelKind) string {
	switch kind {
	case model.LabelConfig:
		return zpl.ConfigLabel()
	case model.LabelSafeWidth:
		return zpl.SafeWidth()
	default:
		return zpl.Simple()
	}
}

// Print renders req and sends it to address (or the saved printer)
func (p *Printer) Print(ctx context.Context, req LabelRequest, address string) error {
	payload, err := p.Render(ctx, req)
	if err != nil {
		return err
	}
	return p.tx.Send(ctx, payload, address)
}

// PrintHello prints the two-line diagnostic label
func (p *Printer) PrintHello(ctx context.Context, address string) error {
	return p.Print(ctx, LabelRequest{Kind: model.LabelHello}, address)
}

// PrintBlackBar prints a full-width bar; height 0 uses the configured default
func (p *Printer) PrintBlackBar(ctx context.Context, address string, height float64) error {
	req := LabelRequest{Kind: model.LabelBlackBar}
	if height != 0 {
		req.Height = &height
	}
	return p.Print(ctx, req, address)
}

// PrintTicket prints the itemized receipt. A nil tearOffset uses the configured one.
func (p *Printer) PrintTicket(ctx context.Context, address string, fields zpl.TicketFields, tearOffset *float64) error {
	return p.Print(ctx, LabelRequest{Kind: model.LabelTicket, Fields: &fields, TearOffset: tearOffset}, address)
}

// PrintSimple sends the minimal test label
func (p *Printer) PrintSimple(ctx context.Context, address string) error {
	return p.tx.Send(ctx, zpl.Simple(), address)
}

// PrintConfig asks the printer to print its configuration
func (p *Printer) PrintConfig(ctx context.Context, address string) error {
	return p.tx.Send(ctx, zpl.ConfigLabel(), address)
}

// PrintSafeWidth sends the narrow 384-dot test label
func (p *Printer) PrintSafeWidth(ctx context.Context, address string) error {
	return p.tx.Send(ctx, zpl.SafeWidth(), address)
}
