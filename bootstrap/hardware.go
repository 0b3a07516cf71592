package bootstrap

import (
	"fmt"

	"github.com/holoplot/go-evdev"

	"github.com/dallas-makerspace/interlock/bus"
	"github.com/dallas-makerspace/interlock/hardware"
)

// Hardware is the pluggable collaborator Build uses to turn a
// configuration entry's pin/bus/device settings into the concrete
// bus.DigitalPin/EdgePin/AnalogPin/I2CBus/evdev.InputDevice a Connection
// needs. Chip enumeration, I2C bus selection and HID device discovery are
// kept out of the wiring logic itself and addressed only through this
// interface. The hardware package provides a gpiocdev/periph-backed
// implementation; tests supply a fake.
type Hardware interface {
	DigitalPin(pin int, activeHigh bool) (bus.DigitalPin, error)
	EdgePin(pin int) (bus.EdgePin, error)
	AnalogPin(pin int) (bus.AnalogPin, error)
	I2CBus(name string) (bus.I2CBus, error)
	InputEventDevice(vendor, product uint16) (*evdev.InputDevice, error)
}

// LiveHardware is the production Hardware: a single discovered gpiochip
// for digital/edge pins, plus per-call I2C bus and HID device discovery.
type LiveHardware struct {
	chip *hardware.Chip
}

// InitHardwareDrivers registers periph.io's host-side drivers. Call once
// at process startup, before building any lcd_p018:output connection.
func InitHardwareDrivers() error {
	return hardware.InitPeriph()
}

// NewLiveHardware discovers the SoC's own gpiochip (consumer names the
// requesting process in the chip's line-consumer metadata).
func NewLiveHardware(consumer string) (*LiveHardware, error) {
	chip, err := hardware.DiscoverChip(consumer, hardware.WantedChipPrefix)
	if err != nil {
		return nil, err
	}
	return &LiveHardware{chip: chip}, nil
}

// Close releases the underlying gpiochip and every line requested from it.
func (h *LiveHardware) Close() error {
	return h.chip.Close()
}

func (h *LiveHardware) DigitalPin(pin int, activeHigh bool) (bus.DigitalPin, error) {
	return h.chip.DigitalPin(pin, activeHigh)
}

func (h *LiveHardware) EdgePin(pin int) (bus.EdgePin, error) {
	return h.chip.EdgePin(pin)
}

// AnalogPin has no default backing: an ADC channel requires a
// device-specific driver (e.g. an MCP3008-over-SPI package) that isn't
// part of this module's dependency set. A deployment that configures
// analog:monitor must supply its own Hardware implementing this method.
func (h *LiveHardware) AnalogPin(pin int) (bus.AnalogPin, error) {
	return nil, fmt.Errorf("hardware: no analog pin driver wired for pin %d; analog:monitor requires a custom Hardware implementation", pin)
}

func (h *LiveHardware) I2CBus(name string) (bus.I2CBus, error) {
	return hardware.OpenI2CBus(name)
}

func (h *LiveHardware) InputEventDevice(vendor, product uint16) (*evdev.InputDevice, error) {
	return hardware.FindBadgeReader(vendor, product)
}
