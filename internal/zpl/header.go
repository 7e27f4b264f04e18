// internal/zpl/header.go
package zpl

import (
	"fmt"
	"math"
	"strings"

	"meter-print-service/internal/model"
)

// MinLabelLength is the shortest ^LL ever emitted
const MinLabelLength = 60

// Options are the per-call layout settings shared by every generated label
type Options struct {
	// Width is the print width in dots; zero, negative or non-finite means 576
	Width float64 `json:"width"`
	// TearOffset is the signed ^TO adjustment in dots
	TearOffset float64 `json:"tear_offset"`
}

// PrintWidth resolves pw to the ^PW value used by the header
func PrintWidth(pw float64) int {
	if math.IsNaN(pw) || math.IsInf(pw, 0) || pw <= 0 {
		return model.DefaultPrintWidth
	}
	w := math.Floor(pw)
	if w < 1 {
		return model.DefaultPrintWidth
	}
	if w > model.MaxPrintWidth {
		return model.MaxPrintWidth
	}
	return int(w)
}

func tearOffset(offset float64) int {
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return 0
	}
	return int(math.Trunc(offset))
}

func labelLength(ll float64) int {
	if math.IsNaN(ll) || ll < MinLabelLength {
		return MinLabelLength
	}
	return int(math.Floor(ll))
}

// Header opens a continuous-media, tear-off label of the given width and length
func Header(pw, ll, offset float64) string {
	return fmt.Sprintf("^XA^PON^PW%d^MNN^MMT^TO%d^LH0,0^CI28^LL%d\n",
		PrintWidth(pw), tearOffset(offset), labelLength(ll))
}

// Footer closes a label
func Footer() string {
	return "^XZ"
}

// canvas accumulates fields while tracking the vertical cursor
type canvas struct {
	body strings.Builder
	y    int
}

func newCanvas(top int) *canvas {
	return &canvas{y: top}
}

// text draws a scalable-font line at (x, y) and advances by size+10
func (c *canvas) text(txt string, size, x int) {
	fmt.Fprintf(&c.body, "^FO%d,%d^A0N,%d,%d^FD%s^FS\n", x, c.y, size, size, txt)
	c.y += size + 10
}

// rule draws a 2-dot separator inset 20 dots on each side
func (c *canvas) rule(width int) {
	fmt.Fprintf(&c.body, "^FO20,%d^GB%d,2,2^FS\n", c.y, width-40)
	c.y += 16
}

// bar draws a solid box of the given size at (x, y) without moving the cursor
func (c *canvas) bar(x, width, height int) {
	fmt.Fprintf(&c.body, "^FO%d,%d^GB%d,%d,%d,B,0^FS\n", x, c.y, width, height, height)
}

func (c *canvas) skip(dots int) {
	c.y += dots
}

// label wraps the accumulated body with header and footer
func (c *canvas) label(opts Options, ll int) string {
	return Header(opts.Width, float64(ll), opts.TearOffset) + c.body.String() + Footer()
}
