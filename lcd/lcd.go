// Package lcd implements the character-grid, RGB-backlit LCD driver used
// by LcdP018Output. It speaks only in terms of bus.I2CBus; the P018
// controller's command byte protocol is out of scope for this module
// (per spec, the LCD controller byte-protocol is an external collaborator)
// — encode below is the minimal framing needed to demonstrate idempotent,
// retrying writes against that bus.
package lcd

import (
	"fmt"
	"time"

	"github.com/dallas-makerspace/interlock/bus"
	"github.com/dallas-makerspace/interlock/config"
)

const (
	defaultAddr = 0x27
	maxRetries  = 3
	retryWait   = 20 * time.Millisecond
)

// Geometry describes the LCD's character grid.
type Geometry struct {
	Columns int
	Rows    int
}

// DefaultGeometry is the P018's 16x2 character display.
var DefaultGeometry = Geometry{Columns: 16, Rows: 2}

// LCD drives a character-grid, RGB-backlit display over an I2CBus.
type LCD struct {
	bus      bus.I2CBus
	addr     uint16
	geometry Geometry

	lastRows  [2]string
	lastColor config.RGB
	written   bool
}

// Open returns a driver for the display at the default address (0x27) on
// the given bus, using the default 16x2 geometry.
func Open(b bus.I2CBus) *LCD {
	return &LCD{bus: b, addr: defaultAddr, geometry: DefaultGeometry}
}

// Geometry returns the display's character grid dimensions.
func (l *LCD) Geometry() Geometry {
	return l.geometry
}

// Fits reports whether rows are narrow enough to display without
// truncation; violations are logged and the state skipped.
func (l *LCD) Fits(rows [2]string) bool {
	for _, r := range rows {
		if len(r) > l.geometry.Columns {
			return false
		}
	}
	return true
}

// Write renders rows with the given backlight color. It is idempotent: a
// call with the same rows and color as the last successful write is a
// no-op. Writes retry a bounded number of times on bus error.
func (l *LCD) Write(rows [2]string, color config.RGB) error {
	if l.written && rows == l.lastRows && color == l.lastColor {
		return nil
	}
	frame := encode(rows, color, l.geometry)
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = l.bus.Write(l.addr, frame); err == nil {
			l.lastRows = rows
			l.lastColor = color
			l.written = true
			return nil
		}
		time.Sleep(retryWait)
	}
	return fmt.Errorf("lcd: write failed after %d attempts: %w", maxRetries, err)
}

// encode frames rows and color into the bytes sent over the bus. The
// exact P018 command set is out of scope; this framing only needs to be
// stable and idempotent for a given (rows, color) pair.
func encode(rows [2]string, color config.RGB, g Geometry) []byte {
	buf := make([]byte, 0, g.Columns*g.Rows+3)
	buf = append(buf, color.R, color.G, color.B)
	for _, row := range rows {
		padded := row
		if len(padded) < g.Columns {
			padded += string(make([]byte, g.Columns-len(padded)))
		}
		buf = append(buf, []byte(padded)...)
	}
	return buf
}
