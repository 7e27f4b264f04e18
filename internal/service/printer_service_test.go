// internal/service/printer_service_test.go
package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"meter-print-service/internal/billing"
	"meter-print-service/internal/bluetooth"
	"meter-print-service/internal/bluetooth/bluetoothtest"
	"meter-print-service/internal/config"
	"meter-print-service/internal/discovery"
	"meter-print-service/internal/model"
	"meter-print-service/internal/preferences"
	"meter-print-service/internal/printer"
	"meter-print-service/internal/repository"
)

const testAddress = "AA:BB:CC:DD:EE:FF"

type mapRepository struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *mapRepository) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapRepository) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mapRepository) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *mapRepository) List(context.Context) ([]*repository.Preference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefs := make([]*repository.Preference, 0, len(m.values))
	for k, v := range m.values {
		prefs = append(prefs, &repository.Preference{Key: k, Value: v})
	}
	sort.Slice(prefs, func(i, j int) bool { return prefs[i].Key < prefs[j].Key })
	return prefs, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []model.PrinterEvent
}

func (r *eventRecorder) PublishPrinterEvent(event model.PrinterEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func (r *eventRecorder) last() model.PrinterEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func newTestService(t *testing.T, adapter *bluetoothtest.FakeAdapter) (*PrinterService, *eventRecorder) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	cfg := config.PrinterConfig{
		HelloTearOffset:  -50,
		TicketTearOffset: -60,
		BarHeight:        48,
		OperationTimeout: 5 * time.Second,
	}

	provider := bluetooth.StaticProvider(adapter)
	gate := bluetooth.NewGate(bluetoothtest.GrantAll(), provider, logger)
	store := preferences.NewStore(&mapRepository{values: map[string]string{}}, logger)
	tx := printer.NewTransmitter(provider, store, 0, 0, logger)

	events := &eventRecorder{}
	svc := NewPrinterService(
		discovery.NewScanner(gate, provider, logger),
		printer.NewConnectionManager(gate, provider, store, logger),
		printer.NewPrinter(tx, store, cfg),
		store,
		events,
		cfg,
		logger,
	)
	svc.now = func() time.Time { return time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC) }
	return svc, events
}

func TestPrintConnectsAndRemembersPrinter(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	svc, events := newTestService(t, adapter)
	ctx := context.Background()

	res, err := svc.Print(ctx, PrintRequest{
		LabelRequest: printer.LabelRequest{Kind: model.LabelHello},
		Address:      testAddress,
	})
	if err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if res.Address != testAddress || res.Label != model.LabelHello || res.JobID == "" {
		t.Errorf("Print() result = %+v", res)
	}

	if n := adapter.CallCount("ConnectToDevice"); n != 1 {
		t.Errorf("ConnectToDevice called %d times, want 1", n)
	}
	writes := adapter.Writes()
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(writes))
	}
	if !strings.Contains(writes[0], "^PW576") || !strings.Contains(writes[0], "^TO-50") {
		t.Errorf("hello payload = %q", writes[0])
	}

	if saved, ok := svc.Saved(ctx); !ok || saved != testAddress {
		t.Errorf("Saved() = %q, %v", saved, ok)
	}

	got := events.types()
	want := []model.EventType{model.EventPrinterConnected, model.EventPrintCompleted}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestPrintUsesSavedPrinter(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	svc, _ := newTestService(t, adapter)
	ctx := context.Background()

	if _, err := svc.Connect(ctx, testAddress); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	res, err := svc.Print(ctx, PrintRequest{LabelRequest: printer.LabelRequest{Kind: model.LabelSimple}})
	if err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if res.Address != testAddress {
		t.Errorf("Print() address = %q, want saved %q", res.Address, testAddress)
	}
	if n := adapter.CallCount("ConnectToDevice"); n != 1 {
		t.Errorf("ConnectToDevice called %d times, want 1", n)
	}
}

func TestForgetSavedPrinter(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	svc, events := newTestService(t, adapter)
	ctx := context.Background()

	if _, err := svc.Connect(ctx, testAddress); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	prefs, err := svc.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if len(prefs) != 1 || prefs[0].Key != preferences.KeyAddress || prefs[0].Value != testAddress {
		t.Errorf("Preferences() = %+v", prefs)
	}

	if err := svc.Forget(ctx); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	if last := events.last(); last.EventType != model.EventPrinterForgotten || last.Address != testAddress {
		t.Errorf("last event = %+v", last)
	}
	if _, ok := svc.Saved(ctx); ok {
		t.Error("Saved() still reports a printer")
	}

	_, err = svc.Print(ctx, PrintRequest{LabelRequest: printer.LabelRequest{Kind: model.LabelHello}})
	if !errors.Is(err, model.ErrNoPrinterSelected) {
		t.Errorf("Print() after Forget() error = %v, want ErrNoPrinterSelected", err)
	}
}

func TestPrintWithoutPrinter(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	svc, events := newTestService(t, adapter)

	_, err := svc.Print(context.Background(), PrintRequest{LabelRequest: printer.LabelRequest{Kind: model.LabelHello}})
	if !errors.Is(err, model.ErrNoPrinterSelected) {
		t.Fatalf("Print() error = %v, want ErrNoPrinterSelected", err)
	}
	if len(adapter.Writes()) != 0 {
		t.Error("payload written without a printer")
	}

	last := events.last()
	if last.EventType != model.EventPrintFailed || last.Message != "Sin impresora seleccionada." {
		t.Errorf("last event = %+v", last)
	}
}

func TestPrintTransmissionFailure(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	adapter.WriteErrs = []error{errors.New("broken pipe"), errors.New("broken pipe")}
	svc, events := newTestService(t, adapter)

	_, err := svc.Print(context.Background(), PrintRequest{
		LabelRequest: printer.LabelRequest{Kind: model.LabelConfig},
		Address:      testAddress,
	})
	if !errors.Is(err, model.ErrTransmissionFailed) {
		t.Fatalf("Print() error = %v, want ErrTransmissionFailed", err)
	}
	if n := len(adapter.Writes()); n != 2 {
		t.Errorf("writes = %d, want 2", n)
	}
	if last := events.last(); last.EventType != model.EventPrintFailed || last.Label != model.LabelConfig {
		t.Errorf("last event = %+v", last)
	}
}

func TestOperationsRejectedWhileBusy(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	svc, _ := newTestService(t, adapter)
	ctx := context.Background()

	svc.busy.Lock()
	defer svc.busy.Unlock()

	if _, err := svc.Print(ctx, PrintRequest{Address: testAddress}); !errors.Is(err, model.ErrBusy) {
		t.Errorf("Print() error = %v, want ErrBusy", err)
	}
	if _, err := svc.Scan(ctx); !errors.Is(err, model.ErrBusy) {
		t.Errorf("Scan() error = %v, want ErrBusy", err)
	}
	if _, err := svc.Connect(ctx, testAddress); !errors.Is(err, model.ErrBusy) {
		t.Errorf("Connect() error = %v, want ErrBusy", err)
	}
	if err := svc.Forget(ctx); !errors.Is(err, model.ErrBusy) {
		t.Errorf("Forget() error = %v, want ErrBusy", err)
	}
	if len(adapter.Calls()) != 0 {
		t.Errorf("adapter touched while busy: %v", adapter.Calls())
	}
}

func TestScanNormalizesDevices(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	adapter.Devices = []model.RawDevice{
		{"address": testAddress, "name": "ZQ320"},
		{"device": map[string]interface{}{"macAddress": "11:22:33:44:55:66"}},
		{"address": testAddress, "name": "duplicate"},
	}
	svc, events := newTestService(t, adapter)

	devices, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("Scan() = %d devices, want 2: %+v", len(devices), devices)
	}
	if devices[0].Name != "ZQ320" || *devices[0].Address != testAddress {
		t.Errorf("first device = %+v", devices[0])
	}
	if devices[1].Name != model.UnknownDeviceName {
		t.Errorf("second device name = %q", devices[1].Name)
	}
	if last := events.last(); last.EventType != model.EventScanCompleted {
		t.Errorf("last event = %v", last.EventType)
	}
}

func TestWidthFlowsIntoLabels(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	svc, events := newTestService(t, adapter)
	ctx := context.Background()

	stored, err := svc.SetWidth(ctx, 150)
	if err != nil {
		t.Fatalf("SetWidth() error = %v", err)
	}
	if stored != model.MinPrintWidth || svc.Width(ctx) != model.MinPrintWidth {
		t.Errorf("stored width = %d, Width() = %d", stored, svc.Width(ctx))
	}
	if last := events.last(); last.EventType != model.EventWidthChanged {
		t.Errorf("last event = %v", last.EventType)
	}

	payload, err := svc.Preview(ctx, printer.LabelRequest{Kind: model.LabelBlackBar})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if !strings.Contains(payload, "^PW200") || !strings.Contains(payload, "^GB200,48,48,B,0^FS") {
		t.Errorf("bar preview = %q", payload)
	}
	if len(adapter.Calls()) != 0 {
		t.Error("Preview() touched the adapter")
	}
}

func TestPreviewUnknownKind(t *testing.T) {
	svc, _ := newTestService(t, bluetoothtest.NewFakeAdapter())

	if _, err := svc.Preview(context.Background(), printer.LabelRequest{Kind: "poster"}); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("Preview() error = %v, want ErrInvalidInput", err)
	}
}

func TestPrintReceipt(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	svc, _ := newTestService(t, adapter)

	receipt, res, err := svc.PrintReceipt(context.Background(), ReceiptRequest{
		ReceiptInput: billing.ReceiptInput{
			Customer:        "Juan Perez",
			LastReading:     &billing.Reading{ID: 12, Date: "2025-09-25"},
			PreviousReading: decimal.NewFromInt(100),
			CurrentReading:  decimal.NewFromInt(118),
			Tariff:          decimal.NewFromInt(500),
			Penalty:         decimal.NewFromInt(2500),
		},
		Address: testAddress,
	})
	if err != nil {
		t.Fatalf("PrintReceipt() error = %v", err)
	}
	if !receipt.Total.Equal(decimal.NewFromInt(11500)) {
		t.Errorf("Total = %s, want 11500", receipt.Total)
	}
	if res.Label != model.LabelReceipt {
		t.Errorf("label = %q", res.Label)
	}

	writes := adapter.Writes()
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(writes))
	}
	for _, want := range []string{"^TO-60", "Comprobante #2025092512", "CRC 11,500", "Cliente: Juan Perez"} {
		if !strings.Contains(writes[0], want) {
			t.Errorf("receipt payload missing %q", want)
		}
	}
}

func TestPrintReceiptRejectsBadDate(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	svc, _ := newTestService(t, adapter)

	_, _, err := svc.PrintReceipt(context.Background(), ReceiptRequest{
		ReceiptInput: billing.ReceiptInput{Customer: "Ana", LastReading: &billing.Reading{Date: "ayer"}},
		Address:      testAddress,
	})
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("PrintReceipt() error = %v, want ErrInvalidInput", err)
	}
	if len(adapter.Calls()) != 0 {
		t.Error("adapter touched for an invalid receipt")
	}
}
