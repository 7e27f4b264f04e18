// internal/printer/transmitter.go
package printer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"meter-print-service/internal/bluetooth"
	"meter-print-service/internal/model"
	"meter-print-service/internal/utils"
)

// Default timing heuristics. Retries, not delays, decide success.
const (
	DefaultSettleDelay = 120 * time.Millisecond
	DefaultRetryDelay  = 80 * time.Millisecond
)

// Transmitter sends ZPL payloads to a printer
type Transmitter struct {
	provider    *bluetooth.Provider
	store       AddressStore
	settleDelay time.Duration
	retryDelay  time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

// NewTransmitter creates a new transmitter
func NewTransmitter(provider *bluetooth.Provider, store AddressStore, settleDelay, retryDelay time.Duration, logger *zap.Logger) *Transmitter {
	return &Transmitter{
		provider:    provider,
		store:       store,
		settleDelay: settleDelay,
		retryDelay:  retryDelay,
		sleep:       sleepContext,
		logger:      logger,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// payloadVariants returns the payload as given, then CRLF-terminated unless
// it already ends with a newline
func payloadVariants(payload string) [2]string {
	second := payload
	if !strings.HasSuffix(payload, "\n") {
		second = payload + "\r\n"
	}
	return [2]string{payload, second}
}

// Resolve picks the explicit address or falls back to the saved default
func (t *Transmitter) Resolve(ctx context.Context, address string) (string, error) {
	if address == "" {
		saved, ok := t.store.SavedAddress(ctx)
		if !ok {
			return "", model.NewPrintError(model.ErrNoPrinterSelected, "no address given and none saved", nil)
		}
		return saved, nil
	}
	if !model.IsValidMAC(address) {
		return "", model.NewPrintError(model.ErrInvalidAddress, fmt.Sprintf("%q is not a classic bluetooth address", address), nil)
	}
	return address, nil
}

// Send writes payload to address (or the saved printer), connecting first if
// needed. The payload is tried at most twice.
func (t *Transmitter) Send(ctx context.Context, payload, address string) error {
	target, err := t.Resolve(ctx, address)
	if err != nil {
		return err
	}

	adapter, err := t.provider.Adapter(ctx)
	if err != nil {
		return err
	}

	plog := utils.NewPrinterLogger(t.logger, target)

	connected, err := adapter.IsDeviceConnected(ctx, target)
	if err != nil {
		return model.NewPrintError(model.ErrTransmissionFailed, "failed to query connection state", err)
	}
	if !connected {
		if err := adapter.ConnectToDevice(ctx, target); err != nil {
			plog.LogConnection("connect", false, err)
			return model.NewPrintError(model.ErrTransmissionFailed, "failed to connect before sending", err)
		}
		plog.LogConnection("connect", true, nil)
		if err := t.sleep(ctx, t.settleDelay); err != nil {
			return model.NewPrintError(model.ErrTransmissionFailed, "cancelled while link settled", err)
		}
	}

	var lastErr error
	for i, variant := range payloadVariants(payload) {
		err := adapter.WriteToDevice(ctx, target, variant)
		plog.LogAttempt(i+1, len(variant), err)
		if err == nil {
			return nil
		}
		lastErr = err
		if serr := t.sleep(ctx, t.retryDelay); serr != nil {
			break
		}
	}

	return model.NewPrintError(model.ErrTransmissionFailed, "printer rejected both payload variants", lastErr)
}
