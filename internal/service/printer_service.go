// internal/service/printer_service.go
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meter-print-service/internal/billing"
	"meter-print-service/internal/config"
	"meter-print-service/internal/discovery"
	"meter-print-service/internal/model"
	"meter-print-service/internal/preferences"
	"meter-print-service/internal/printer"
	"meter-print-service/internal/repository"
	"meter-print-service/internal/utils"
)

// EventPublisher receives printer events as operations finish
type EventPublisher interface {
	PublishPrinterEvent(event model.PrinterEvent)
}

// PrintRequest is a label print with an optional explicit target
type PrintRequest struct {
	printer.LabelRequest
	Address string `json:"address,omitempty"`
}

// ReceiptRequest prints a priced meter reading
type ReceiptRequest struct {
	billing.ReceiptInput
	Address    string   `json:"address,omitempty"`
	TearOffset *float64 `json:"tear_offset,omitempty"`
}

// PrintResult describes a finished print job
type PrintResult struct {
	JobID   string          `json:"job_id"`
	Address string          `json:"address"`
	Label   model.LabelKind `json:"label"`
	Bytes   int             `json:"bytes"`
}

// PrinterService runs one printer operation at a time
type PrinterService struct {
	scanner     *discovery.Scanner
	connections *printer.ConnectionManager
	printer     *printer.Printer
	prefs       *preferences.Store
	publisher   EventPublisher
	timeout     time.Duration
	now         func() time.Time
	busy        sync.Mutex
	logger      *utils.ServiceLogger
}

// NewPrinterService creates a new printer service. publisher may be nil.
func NewPrinterService(
	scanner *discovery.Scanner,
	connections *printer.ConnectionManager,
	p *printer.Printer,
	prefs *preferences.Store,
	publisher EventPublisher,
	cfg config.PrinterConfig,
	logger *zap.Logger,
) *PrinterService {
	return &PrinterService{
		scanner:     scanner,
		connections: connections,
		printer:     p,
		prefs:       prefs,
		publisher:   publisher,
		timeout:     cfg.OperationTimeout,
		now:         time.Now,
		logger:      utils.NewServiceLogger(logger, "printer-service"),
	}
}

func (s *PrinterService) acquire(operation string) (func(), error) {
	if !s.busy.TryLock() {
		return nil, model.NewPrintError(model.ErrBusy, operation+" rejected while another operation runs", nil)
	}
	return s.busy.Unlock, nil
}

func (s *PrinterService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *PrinterService) publish(event model.PrinterEvent) {
	if s.publisher != nil {
		s.publisher.PublishPrinterEvent(event)
	}
}

// Scan lists paired printers, normalized and deduplicated
func (s *PrinterService) Scan(ctx context.Context) ([]model.DiscoveredDevice, error) {
	release, err := s.acquire("scan")
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.scanner.Scan(ctx)
	if err != nil {
		s.publish(model.NewPrinterEvent(model.EventPrinterError, "").WithError(err))
		return nil, err
	}

	devices := discovery.Normalize(res)
	event := model.NewPrinterEvent(model.EventScanCompleted, "")
	event.Message = "scan completed"
	s.publish(event)

	s.logger.Info("Printer scan completed",
		zap.Int("paired", len(res.Paired)),
		zap.Int("devices", len(devices)),
	)
	return devices, nil
}

// Connect connects address and makes it the default printer
func (s *PrinterService) Connect(ctx context.Context, address string) (string, error) {
	release, err := s.acquire("connect")
	if err != nil {
		return "", err
	}
	defer release()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.connect(ctx, address)
}

func (s *PrinterService) connect(ctx context.Context, address string) (string, error) {
	connected, err := s.connections.Connect(ctx, address)
	if err != nil {
		s.publish(model.NewPrinterEvent(model.EventPrinterError, address).WithError(err))
		return "", err
	}
	s.publish(model.NewPrinterEvent(model.EventPrinterConnected, connected))
	return connected, nil
}

// Saved returns the persisted default printer
func (s *PrinterService) Saved(ctx context.Context) (string, bool) {
	return s.connections.Saved(ctx)
}

// Forget clears the default printer. Prints without an explicit address fail
// with ErrNoPrinterSelected until another printer is connected.
func (s *PrinterService) Forget(ctx context.Context) error {
	release, err := s.acquire("forget")
	if err != nil {
		return err
	}
	defer release()

	address, _ := s.connections.Saved(ctx)
	if err := s.prefs.ForgetAddress(ctx); err != nil {
		return err
	}
	event := model.NewPrinterEvent(model.EventPrinterForgotten, address)
	event.Message = "saved printer cleared"
	s.publish(event)
	return nil
}

// Preferences returns the stored preference rows
func (s *PrinterService) Preferences(ctx context.Context) ([]*repository.Preference, error) {
	return s.prefs.All(ctx)
}

// Width returns the persisted print width in dots
func (s *PrinterService) Width(ctx context.Context) int {
	return s.prefs.Width(ctx)
}

// SetWidth normalizes and stores a new print width
func (s *PrinterService) SetWidth(ctx context.Context, width float64) (int, error) {
	stored, err := s.prefs.SetWidth(ctx, width)
	if err != nil {
		return 0, err
	}
	event := model.NewPrinterEvent(model.EventWidthChanged, "")
	event.Message = "print width set"
	s.publish(event)
	return stored, nil
}

// Preview renders a label without printing it
func (s *PrinterService) Preview(ctx context.Context, req printer.LabelRequest) (string, error) {
	return s.printer.Render(ctx, req)
}

// Print connects the target (explicit or saved) and prints the label
func (s *PrinterService) Print(ctx context.Context, req PrintRequest) (*PrintResult, error) {
	release, err := s.acquire("print")
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.print(ctx, req)
}

func (s *PrinterService) print(ctx context.Context, req PrintRequest) (*PrintResult, error) {
	jobID := uuid.New().String()
	opLogger := utils.NewOperationLogger(s.logger.Logger, "print_"+string(req.Kind), jobID)
	opLogger.Start(zap.String("address", req.Address))

	fail := func(address string, err error) (*PrintResult, error) {
		opLogger.Error(err)
		event := model.NewPrinterEvent(model.EventPrintFailed, address).WithError(err)
		event.Label = req.Kind
		s.publish(event)
		return nil, err
	}

	payload, err := s.printer.Render(ctx, req.LabelRequest)
	if err != nil {
		return fail(req.Address, err)
	}

	target, err := s.printer.Transmitter().Resolve(ctx, req.Address)
	if err != nil {
		return fail(req.Address, err)
	}
	if _, err := s.connect(ctx, target); err != nil {
		return fail(target, err)
	}

	if err := s.printer.Transmitter().Send(ctx, payload, target); err != nil {
		return fail(target, err)
	}

	opLogger.Success(zap.String("address", target), zap.Int("bytes", len(payload)))
	event := model.NewPrinterEvent(model.EventPrintCompleted, target)
	event.Label = req.Kind
	s.publish(event)

	return &PrintResult{
		JobID:   jobID,
		Address: target,
		Label:   req.Kind,
		Bytes:   len(payload),
	}, nil
}

// PrintReceipt prices a reading and prints it as a ticket
func (s *PrinterService) PrintReceipt(ctx context.Context, req ReceiptRequest) (*billing.Receipt, *PrintResult, error) {
	receipt, err := billing.Build(req.ReceiptInput, s.now())
	if err != nil {
		return nil, nil, model.NewPrintError(model.ErrInvalidInput, "cannot price reading", err)
	}
	fields := receipt.TicketFields()

	result, err := s.Print(ctx, PrintRequest{
		LabelRequest: printer.LabelRequest{
			Kind:       model.LabelReceipt,
			Fields:     &fields,
			TearOffset: req.TearOffset,
		},
		Address: req.Address,
	})
	if err != nil {
		return nil, nil, err
	}
	return &receipt, result, nil
}
