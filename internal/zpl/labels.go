// internal/zpl/labels.go
package zpl

import (
	"math"
)

// DefaultBarHeight is used when no usable bar height is given
const DefaultBarHeight = 48

const minBarHeight = 8

// Fixed diagnostic payloads
const (
	simplePayload    = "^XA^FO40,40^A0N,40,40^FDTEST ZPL^FS^XZ"
	configPayload    = "^XA^HH^XZ"
	safeWidthPayload = "^XA^PW384^LL300^FO20,20^A0N,40,40^FDSAFE WIDTH^FS^XZ"
)

// Hello renders the two-line diagnostic label
func Hello(opts Options) string {
	c := newCanvas(30)
	c.text("HELLO ZPL", 50, 30)
	c.text("1234567890", 40, 30)
	return c.label(opts, c.y+20)
}

// FullBlackBar renders one solid bar spanning the whole print width.
// Heights below 8 dots are raised to 8.
func FullBlackBar(opts Options, height float64) string {
	w := PrintWidth(opts.Width)
	h := DefaultBarHeight
	if !math.IsNaN(height) && !math.IsInf(height, 0) {
		h = int(math.Max(minBarHeight, math.Floor(height)))
	}

	c := newCanvas(0)
	c.bar(0, w, h)
	return c.label(opts, h+40)
}

// Simple is a minimal label without header directives
func Simple() string {
	return simplePayload
}

// ConfigLabel asks the printer to print its configuration
func ConfigLabel() string {
	return configPayload
}

// SafeWidth prints at 384 dots for printers that misbehave with wide ^PW values
func SafeWidth() string {
	return safeWidthPayload
}
