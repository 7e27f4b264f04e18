// internal/discovery/normalize.go
package discovery

import (
	"fmt"

	"meter-print-service/internal/model"
)

// Candidate field names per concept, in priority order. Bluetooth stacks
// disagree on naming; this table is the single place that knows them.
var (
	addressFields = []string{"address", "deviceAddress", "macAddress", "id"}
	nameFields    = []string{"name", "deviceName"}
)

// nestedDeviceField holds the real record when a stack wraps it
const nestedDeviceField = "device"

// Normalize flattens a scan result into picker entries, paired first.
// Entries are deduplicated by address, or by name:index when no address is
// known; the first occurrence wins.
func Normalize(res model.ScanResult) []model.DiscoveredDevice {
	out := make([]model.DiscoveredDevice, 0, len(res.Paired)+len(res.Found))
	seen := make(map[string]struct{})

	push := func(list []model.RawDevice) {
		for i, dev := range list {
			raw := unwrap(dev)
			addr := firstValue(raw, addressFields)
			name := firstValue(raw, nameFields)
			if name == "" {
				name = model.UnknownDeviceName
			}

			key := addr
			if key == "" {
				key = fmt.Sprintf("%s:%d", name, i)
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			entry := model.DiscoveredDevice{Name: name}
			if addr != "" {
				a := addr
				entry.Address = &a
			}
			out = append(out, entry)
		}
	}

	push(res.Paired)
	push(res.Found)
	return out
}

// unwrap returns the nested device record when present
func unwrap(dev model.RawDevice) model.RawDevice {
	switch nested := dev[nestedDeviceField].(type) {
	case model.RawDevice:
		if nested != nil {
			return nested
		}
	case map[string]interface{}:
		if nested != nil {
			return model.RawDevice(nested)
		}
	}
	return dev
}

// firstValue returns the first candidate field holding a non-empty value
func firstValue(raw model.RawDevice, fields []string) string {
	for _, f := range fields {
		v, ok := raw[f]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		default:
			s = fmt.Sprint(t)
		}
		if s != "" {
			return s
		}
	}
	return ""
}
