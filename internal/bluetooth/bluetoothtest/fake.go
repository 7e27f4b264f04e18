// Package bluetoothtest provides an in-memory Bluetooth adapter for tests.
package bluetoothtest

import (
	"context"
	"strings"
	"sync"

	"meter-print-service/internal/bluetooth"
	"meter-print-service/internal/model"
)

// FakeAdapter implements bluetooth.Adapter and records every call
type FakeAdapter struct {
	mu sync.Mutex

	Enabled    bool
	EnabledErr error
	EnableErr  error
	Devices    []model.RawDevice
	DevicesErr error
	ConnectErr error
	// WriteErrs is consumed one entry per WriteToDevice call; a nil entry
	// or an exhausted slice means the write succeeds.
	WriteErrs []error

	connected map[string]bool
	calls     []string
	writes    []string
}

// NewFakeAdapter returns an enabled adapter with no connections
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{Enabled: true, connected: map[string]bool{}}
}

var _ bluetooth.Adapter = (*FakeAdapter)(nil)

func (f *FakeAdapter) record(call string) {
	f.calls = append(f.calls, call)
}

// SetConnected marks address as already connected
func (f *FakeAdapter) SetConnected(address string, connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected[strings.ToUpper(address)] = connected
}

// IsEnabled implements bluetooth.Adapter
func (f *FakeAdapter) IsEnabled(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("IsEnabled")
	return f.Enabled, f.EnabledErr
}

// RequestEnable implements bluetooth.Adapter
func (f *FakeAdapter) RequestEnable(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RequestEnable")
	if f.EnableErr != nil {
		return f.EnableErr
	}
	f.Enabled = true
	return nil
}

// BondedDevices implements bluetooth.Adapter
func (f *FakeAdapter) BondedDevices(context.Context) ([]model.RawDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BondedDevices")
	return f.Devices, f.DevicesErr
}

// IsDeviceConnected implements bluetooth.Adapter
func (f *FakeAdapter) IsDeviceConnected(_ context.Context, address string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("IsDeviceConnected")
	return f.connected[strings.ToUpper(address)], nil
}

// ConnectToDevice implements bluetooth.Adapter
func (f *FakeAdapter) ConnectToDevice(_ context.Context, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ConnectToDevice")
	if f.ConnectErr != nil {
		return f.ConnectErr
	}
	f.connected[strings.ToUpper(address)] = true
	return nil
}

// WriteToDevice implements bluetooth.Adapter
func (f *FakeAdapter) WriteToDevice(_ context.Context, _ string, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("WriteToDevice")
	f.writes = append(f.writes, payload)

	if len(f.WriteErrs) == 0 {
		return nil
	}
	err := f.WriteErrs[0]
	f.WriteErrs = f.WriteErrs[1:]
	return err
}

// Calls returns the recorded method names in order
func (f *FakeAdapter) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how often method was invoked
func (f *FakeAdapter) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

// Writes returns every payload passed to WriteToDevice
func (f *FakeAdapter) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// FakePermissions answers permission requests with a fixed status map
type FakePermissions struct {
	Status map[bluetooth.Permission]bluetooth.PermissionStatus
	Err    error
	Calls  int
}

// GrantAll returns a requester that grants every permission
func GrantAll() *FakePermissions {
	status := map[bluetooth.Permission]bluetooth.PermissionStatus{}
	for _, p := range bluetooth.RequiredPermissions {
		status[p] = bluetooth.PermissionGranted
	}
	return &FakePermissions{Status: status}
}

// RequestPermissions implements bluetooth.PermissionRequester
func (f *FakePermissions) RequestPermissions(_ context.Context, perms []bluetooth.Permission) (map[bluetooth.Permission]bluetooth.PermissionStatus, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[bluetooth.Permission]bluetooth.PermissionStatus, len(perms))
	for _, p := range perms {
		out[p] = f.Status[p]
	}
	return out, nil
}
