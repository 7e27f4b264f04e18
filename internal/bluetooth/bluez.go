// internal/bluetooth/bluez.go
package bluetooth

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"meter-print-service/internal/config"
	"meter-print-service/internal/model"
	"meter-print-service/internal/protocol"
)

const (
	bluezService      = "org.bluez"
	adapterInterface  = "org.bluez.Adapter1"
	deviceInterface   = "org.bluez.Device1"
	objectManagerCall = "org.freedesktop.DBus.ObjectManager.GetManagedObjects"
	propertiesSet     = "org.freedesktop.DBus.Properties.Set"
)

// LinkFactory creates the byte link used to reach a printer
type LinkFactory func(address string) (protocol.DeviceProtocol, error)

// BlueZAdapter implements Adapter on Linux using BlueZ over the system bus.
// It owns every open printer link, keyed by upper-case address.
type BlueZAdapter struct {
	conn        *dbus.Conn
	adapterPath dbus.ObjectPath
	newLink     LinkFactory
	logger      *zap.Logger

	mutex    sync.Mutex
	links    map[string]protocol.DeviceProtocol
	failures map[string]int
}

// maxWriteFailures consecutive write errors close a link. One failure is
// tolerated so the line-ending retry can reuse the same link.
const maxWriteFailures = 2

// NewBlueZFactory returns an AdapterFactory that connects to BlueZ on first use
func NewBlueZFactory(cfg *config.BluetoothConfig, logger *zap.Logger) AdapterFactory {
	return func(ctx context.Context) (Adapter, error) {
		conn, err := dbus.ConnectSystemBus()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to system bus: %w", err)
		}

		newLink := func(address string) (protocol.DeviceProtocol, error) {
			return protocol.CreateProtocol(address, cfg, logger)
		}

		adapter, err := NewBlueZAdapter(ctx, conn, cfg.Adapter, newLink, logger)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return adapter, nil
	}
}

// NewBlueZAdapter binds to the named controller (e.g. hci0) and checks it exists
func NewBlueZAdapter(ctx context.Context, conn *dbus.Conn, name string, newLink LinkFactory, logger *zap.Logger) (*BlueZAdapter, error) {
	if name == "" {
		name = "hci0"
	}

	a := &BlueZAdapter{
		conn:        conn,
		adapterPath: dbus.ObjectPath("/org/bluez/" + name),
		newLink:     newLink,
		logger:      logger.With(zap.String("component", "bluez"), zap.String("adapter", name)),
		links:       make(map[string]protocol.DeviceProtocol),
		failures:    make(map[string]int),
	}

	if _, err := a.IsEnabled(ctx); err != nil {
		return nil, fmt.Errorf("bluetooth adapter %s not found: %w", name, err)
	}
	return a, nil
}

// IsEnabled reports Adapter1.Powered
func (a *BlueZAdapter) IsEnabled(ctx context.Context) (bool, error) {
	obj := a.conn.Object(bluezService, a.adapterPath)

	var v dbus.Variant
	err := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, adapterInterface, "Powered").Store(&v)
	if err != nil {
		return false, fmt.Errorf("failed to read adapter power state: %w", err)
	}

	powered, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("unexpected Powered value type %s", v.Signature())
	}
	return powered, nil
}

// RequestEnable powers the adapter on
func (a *BlueZAdapter) RequestEnable(ctx context.Context) error {
	obj := a.conn.Object(bluezService, a.adapterPath)
	call := obj.CallWithContext(ctx, propertiesSet, 0, adapterInterface, "Powered", dbus.MakeVariant(true))
	if call.Err != nil {
		return fmt.Errorf("failed to power on adapter: %w", call.Err)
	}
	a.logger.Info("Bluetooth adapter powered on")
	return nil
}

// BondedDevices lists paired devices under this adapter, ordered by object path
func (a *BlueZAdapter) BondedDevices(ctx context.Context) ([]model.RawDevice, error) {
	root := a.conn.Object(bluezService, "/")

	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := root.CallWithContext(ctx, objectManagerCall, 0).Store(&objects); err != nil {
		return nil, fmt.Errorf("failed to list bluez objects: %w", err)
	}

	prefix := string(a.adapterPath) + "/"
	paths := make([]string, 0, len(objects))
	for path := range objects {
		if strings.HasPrefix(string(path), prefix) {
			paths = append(paths, string(path))
		}
	}
	sort.Strings(paths)

	devices := make([]model.RawDevice, 0, len(paths))
	for _, path := range paths {
		props, ok := objects[dbus.ObjectPath(path)][deviceInterface]
		if !ok {
			continue
		}
		if paired, _ := props["Paired"].Value().(bool); !paired {
			continue
		}
		devices = append(devices, rawDeviceFromProperties(path, props))
	}

	a.logger.Debug("Bonded devices listed", zap.Int("count", len(devices)))
	return devices, nil
}

// rawDeviceFromProperties copies the Device1 properties the picker understands
func rawDeviceFromProperties(path string, props map[string]dbus.Variant) model.RawDevice {
	raw := model.RawDevice{"id": path}
	if v, ok := props["Address"].Value().(string); ok {
		raw["address"] = v
	}
	if v, ok := props["Name"].Value().(string); ok {
		raw["name"] = v
	} else if v, ok := props["Alias"].Value().(string); ok {
		raw["deviceName"] = v
	}
	if v, ok := props["Connected"].Value().(bool); ok {
		raw["connected"] = v
	}
	if v, ok := props["Class"].Value().(uint32); ok {
		raw["class"] = v
	}
	return raw
}

// IsDeviceConnected reports whether this process holds an open link to address
func (a *BlueZAdapter) IsDeviceConnected(_ context.Context, address string) (bool, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	link, ok := a.links[strings.ToUpper(address)]
	return ok && link.IsOpen(), nil
}

// ConnectToDevice opens a link to address, replacing a stale one
func (a *BlueZAdapter) ConnectToDevice(ctx context.Context, address string) error {
	key := strings.ToUpper(address)

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if link, ok := a.links[key]; ok {
		if link.IsOpen() {
			return nil
		}
		delete(a.links, key)
	}

	link, err := a.newLink(address)
	if err != nil {
		return err
	}
	if err := link.Open(ctx); err != nil {
		return err
	}

	a.links[key] = link
	delete(a.failures, key)
	a.logger.Info("Printer link opened",
		zap.String("address", address),
		zap.String("protocol", string(link.GetProtocolType())),
	)
	return nil
}

// WriteToDevice writes payload over the open link. The link survives one
// failed write; a second consecutive failure drops it so the next send reconnects.
func (a *BlueZAdapter) WriteToDevice(ctx context.Context, address string, payload string) error {
	key := strings.ToUpper(address)

	a.mutex.Lock()
	defer a.mutex.Unlock()

	link, ok := a.links[key]
	if !ok || !link.IsOpen() {
		return fmt.Errorf("device %s not connected", address)
	}

	if err := link.Write(ctx, []byte(payload)); err != nil {
		if a.failures == nil {
			a.failures = make(map[string]int)
		}
		a.failures[key]++
		if a.failures[key] >= maxWriteFailures {
			if cerr := link.Close(); cerr != nil {
				a.logger.Debug("Failed to close broken link", zap.Error(cerr))
			}
			delete(a.links, key)
			delete(a.failures, key)
		}
		return err
	}
	delete(a.failures, key)
	return nil
}

// LinkStats returns counters for every open link
func (a *BlueZAdapter) LinkStats() map[string]protocol.ProtocolStats {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	stats := make(map[string]protocol.ProtocolStats, len(a.links))
	for addr, link := range a.links {
		stats[addr] = link.Stats()
	}
	return stats
}

// Close drops all links and the bus connection
func (a *BlueZAdapter) Close() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for addr, link := range a.links {
		if err := link.Close(); err != nil {
			a.logger.Warn("Failed to close printer link", zap.String("address", addr), zap.Error(err))
		}
		delete(a.links, addr)
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
