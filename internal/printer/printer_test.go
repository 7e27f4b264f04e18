// internal/printer/printer_test.go
package printer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"meter-print-service/internal/bluetooth"
	"meter-print-service/internal/bluetooth/bluetoothtest"
	"meter-print-service/internal/config"
	"meter-print-service/internal/model"
	"meter-print-service/internal/zpl"
)

const testAddress = "AA:BB:CC:DD:EE:FF"

// memoryStore is an in-memory AddressStore and WidthSource
type memoryStore struct {
	address string
	width   int
	saves   int
	saveErr error
}

func (m *memoryStore) SavedAddress(context.Context) (string, bool) {
	if !model.IsValidMAC(m.address) {
		return "", false
	}
	return m.address, true
}

func (m *memoryStore) SaveAddress(_ context.Context, address string) error {
	if !model.IsValidMAC(address) {
		return nil
	}
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.address = address
	return nil
}

func (m *memoryStore) Width(context.Context) int {
	if m.width == 0 {
		return model.DefaultPrintWidth
	}
	return m.width
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestTransmitter(t *testing.T, adapter *bluetoothtest.FakeAdapter, store *memoryStore) (*Transmitter, *sleepRecorder) {
	t.Helper()
	tx := NewTransmitter(bluetooth.StaticProvider(adapter), store, DefaultSettleDelay, DefaultRetryDelay, zaptest.NewLogger(t))
	rec := &sleepRecorder{}
	tx.sleep = rec.sleep
	return tx, rec
}

func TestSendRetriesWithCRLF(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	adapter.SetConnected(testAddress, true)
	adapter.WriteErrs = []error{errors.New("buffer full")}
	tx, rec := newTestTransmitter(t, adapter, &memoryStore{})

	if err := tx.Send(context.Background(), "^XA^XZ", testAddress); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	writes := adapter.Writes()
	if len(writes) != 2 {
		t.Fatalf("WriteToDevice called %d times, want 2", len(writes))
	}
	if writes[0] != "^XA^XZ" || writes[1] != "^XA^XZ\r\n" {
		t.Errorf("writes = %q", writes)
	}
	if len(rec.delays) != 1 || rec.delays[0] != DefaultRetryDelay {
		t.Errorf("delays = %v, want [80ms]", rec.delays)
	}
}

func TestSendSecondVariantKeepsNewline(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	adapter.SetConnected(testAddress, true)
	adapter.WriteErrs = []error{errors.New("busy")}
	tx, _ := newTestTransmitter(t, adapter, &memoryStore{})

	if err := tx.Send(context.Background(), "^XA^XZ\n", testAddress); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	writes := adapter.Writes()
	if len(writes) != 2 || writes[1] != "^XA^XZ\n" {
		t.Errorf("writes = %q", writes)
	}
}

func TestSendFailsAfterTwoAttempts(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	adapter.SetConnected(testAddress, true)
	last := errors.New("link lost")
	adapter.WriteErrs = []error{errors.New("first"), last, nil}
	tx, rec := newTestTransmitter(t, adapter, &memoryStore{})

	err := tx.Send(context.Background(), "^XA^XZ", testAddress)
	if !errors.Is(err, model.ErrTransmissionFailed) {
		t.Fatalf("Send() error = %v, want ErrTransmissionFailed", err)
	}
	if !errors.Is(err, last) {
		t.Errorf("Send() error does not carry the last write error: %v", err)
	}
	if n := adapter.CallCount("WriteToDevice"); n != 2 {
		t.Errorf("WriteToDevice called %d times, want 2", n)
	}
	if len(rec.delays) != 2 {
		t.Errorf("delays = %v, want two retry delays", rec.delays)
	}
}

func TestSendWithoutAnyAddress(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	tx, _ := newTestTransmitter(t, adapter, &memoryStore{})

	err := tx.Send(context.Background(), "^XA^XZ", "")
	if !errors.Is(err, model.ErrNoPrinterSelected) {
		t.Fatalf("Send() error = %v, want ErrNoPrinterSelected", err)
	}
	if calls := adapter.Calls(); len(calls) != 0 {
		t.Errorf("adapter called: %v", calls)
	}
}

func TestSendUsesSavedAddressAndSettles(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	tx, rec := newTestTransmitter(t, adapter, &memoryStore{address: testAddress})

	if err := tx.Send(context.Background(), "^XA^XZ", ""); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	want := []string{"IsDeviceConnected", "ConnectToDevice", "WriteToDevice"}
	if got := adapter.Calls(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if len(rec.delays) != 1 || rec.delays[0] != DefaultSettleDelay {
		t.Errorf("delays = %v, want [120ms]", rec.delays)
	}
}

func TestSendInvalidExplicitAddress(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	tx, _ := newTestTransmitter(t, adapter, &memoryStore{address: testAddress})

	err := tx.Send(context.Background(), "^XA^XZ", "printer-1")
	if !errors.Is(err, model.ErrInvalidAddress) {
		t.Fatalf("Send() error = %v, want ErrInvalidAddress", err)
	}
	if len(adapter.Calls()) != 0 {
		t.Errorf("adapter called: %v", adapter.Calls())
	}
}

func TestSendConnectFailure(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	adapter.ConnectErr = errors.New("host is down")
	tx, _ := newTestTransmitter(t, adapter, &memoryStore{})

	err := tx.Send(context.Background(), "^XA^XZ", testAddress)
	if !errors.Is(err, model.ErrTransmissionFailed) {
		t.Fatalf("Send() error = %v, want ErrTransmissionFailed", err)
	}
	if adapter.CallCount("WriteToDevice") != 0 {
		t.Error("wrote after a failed connect")
	}
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext() error = %v, want context.Canceled", err)
	}
	if err := sleepContext(context.Background(), 0); err != nil {
		t.Errorf("sleepContext(0) error = %v", err)
	}
}

func newTestManager(t *testing.T, adapter *bluetoothtest.FakeAdapter, store *memoryStore) *ConnectionManager {
	t.Helper()
	logger := zaptest.NewLogger(t)
	provider := bluetooth.StaticProvider(adapter)
	return NewConnectionManager(bluetooth.NewGate(nil, provider, logger), provider, store, logger)
}

func TestConnectPersistsDefault(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	store := &memoryStore{}
	m := newTestManager(t, adapter, store)

	got, err := m.Connect(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if got != testAddress || store.address != testAddress {
		t.Errorf("Connect() = %q, saved %q", got, store.address)
	}
	if adapter.CallCount("ConnectToDevice") != 1 {
		t.Errorf("ConnectToDevice called %d times, want 1", adapter.CallCount("ConnectToDevice"))
	}

	// already connected: no second connect, still persisted
	if _, err := m.Connect(context.Background(), testAddress); err != nil {
		t.Fatalf("Connect() again error = %v", err)
	}
	if adapter.CallCount("ConnectToDevice") != 1 {
		t.Error("reconnected an already connected printer")
	}
	if store.saves != 2 {
		t.Errorf("saves = %d, want 2", store.saves)
	}

	if saved, ok := m.Saved(context.Background()); !ok || saved != testAddress {
		t.Errorf("Saved() = %q, %v", saved, ok)
	}
}

func TestConnectInvalidAddress(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	store := &memoryStore{}
	m := newTestManager(t, adapter, store)

	for _, addr := range []string{"", "AA:BB:CC:DD:EE", "AA-BB-CC-DD-EE-FF", "GG:BB:CC:DD:EE:FF"} {
		_, err := m.Connect(context.Background(), addr)
		if !errors.Is(err, model.ErrInvalidAddress) {
			t.Errorf("Connect(%q) error = %v, want ErrInvalidAddress", addr, err)
		}
	}
	if len(adapter.Calls()) != 0 || store.saves != 0 {
		t.Errorf("side effects on invalid input: calls=%v saves=%d", adapter.Calls(), store.saves)
	}
}

func TestConnectFailureDoesNotPersist(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	adapter.ConnectErr = errors.New("page timeout")
	store := &memoryStore{}
	m := newTestManager(t, adapter, store)

	_, err := m.Connect(context.Background(), testAddress)
	if !errors.Is(err, model.ErrBluetoothUnavailable) {
		t.Fatalf("Connect() error = %v, want ErrBluetoothUnavailable", err)
	}
	if store.saves != 0 {
		t.Error("address persisted after a failed connect")
	}
}

func TestConnectStoreFailureStillConnects(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	store := &memoryStore{saveErr: errors.New("read-only")}
	m := newTestManager(t, adapter, store)

	if _, err := m.Connect(context.Background(), testAddress); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
}

func TestPrinterRender(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	store := &memoryStore{width: 400}
	tx, _ := newTestTransmitter(t, adapter, store)
	p := NewPrinter(tx, store, config.PrinterConfig{
		HelloTearOffset:  -50,
		TicketTearOffset: -60,
		BarHeight:        48,
	})
	ctx := context.Background()

	hello, err := p.Render(ctx, LabelRequest{Kind: model.LabelHello})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(hello, "^XA^PON^PW400^MNN^MMT^TO-50^") {
		t.Errorf("hello header = %q", hello)
	}

	bar, _ := p.Render(ctx, LabelRequest{Kind: model.LabelBlackBar})
	if !strings.Contains(bar, "^TO0^") || !strings.Contains(bar, "^GB400,48,48,B,0^FS") {
		t.Errorf("bar = %q", bar)
	}

	offset := -20.0
	ticket, _ := p.Render(ctx, LabelRequest{Kind: model.LabelTicket, TearOffset: &offset})
	if !strings.Contains(ticket, "^TO-20^") || !strings.Contains(ticket, "^FDCliente: Juan Perez^FS") {
		t.Errorf("ticket = %q", ticket)
	}

	safe, _ := p.Render(ctx, LabelRequest{Kind: model.LabelSafeWidth})
	if safe != zpl.SafeWidth() {
		t.Errorf("safe width = %q", safe)
	}

	if _, err := p.Render(ctx, LabelRequest{Kind: "poster"}); err == nil {
		t.Error("Render() accepted an unknown kind")
	}
}

func TestPrintTicketUsesStoredWidth(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	adapter.SetConnected(testAddress, true)
	store := &memoryStore{width: 832, address: testAddress}
	tx, _ := newTestTransmitter(t, adapter, store)
	p := NewPrinter(tx, store, config.PrinterConfig{TicketTearOffset: -60})

	if err := p.PrintTicket(context.Background(), "", zpl.DefaultTicketFields(), nil); err != nil {
		t.Fatalf("PrintTicket() error = %v", err)
	}
	writes := adapter.Writes()
	if len(writes) != 1 || !strings.HasPrefix(writes[0], "^XA^PON^PW832^MNN^MMT^TO-60^") {
		t.Errorf("writes = %q", writes)
	}
}

func TestDiagnosticShortcuts(t *testing.T) {
	adapter := bluetoothtest.NewFakeAdapter()
	adapter.SetConnected(testAddress, true)
	store := &memoryStore{}
	tx, _ := newTestTransmitter(t, adapter, store)
	p := NewPrinter(tx, store, config.PrinterConfig{})
	ctx := context.Background()

	if err := p.PrintSimple(ctx, testAddress); err != nil {
		t.Fatal(err)
	}
	if err := p.PrintConfig(ctx, testAddress); err != nil {
		t.Fatal(err)
	}
	if err := p.PrintSafeWidth(ctx, testAddress); err != nil {
		t.Fatal(err)
	}

	want := []string{zpl.Simple(), zpl.ConfigLabel(), zpl.SafeWidth()}
	got := adapter.Writes()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("writes = %q, want %q", got, want)
	}
}
