package hardware

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/dallas-makerspace/interlock/bus"
)

// InitPeriph registers periph.io's host-side drivers. Call once at process
// startup before OpenI2CBus.
func InitPeriph() error {
	_, err := host.Init()
	return err
}

// OpenI2CBus opens name (empty string for the system default) through
// periph's i2creg and returns a bus.I2CBus adapter around it, the same
// registry seedhammer's own I2C-backed drivers resolve a bus from.
func OpenI2CBus(name string) (bus.I2CBus, error) {
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("hardware: open i2c bus %q: %w", name, err)
	}
	return &periphI2CBus{bus: b}, nil
}

type periphI2CBus struct {
	bus i2c.BusCloser
}

func (p *periphI2CBus) Write(addr uint16, data []byte) error {
	return p.bus.Tx(addr, data, nil)
}

func (p *periphI2CBus) Read(addr uint16, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := p.bus.Tx(addr, nil, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
