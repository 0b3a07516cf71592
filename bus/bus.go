// Package bus defines the thin capability interfaces the Connection
// implementations depend on: digital/analog pins, an I2C bus for the LCD,
// and a line source for badge readers. Concrete drivers (I2C register
// protocols, GPIO chip enumeration, serial framing) are out of scope for
// this module; bus only specifies the interface and provides adapters onto
// the two GPIO/conn libraries the corpus uses in anger:
// periph.io/x/conn/v3 (host-side pin access, as seedhammer's LCD/input
// drivers use it) and github.com/warthog618/go-gpiocdev (Linux gpiochip
// character-device lines, as the makerspace authbox uses it).
package bus

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"github.com/warthog618/go-gpiocdev"
)

// DigitalPin is a GPIO line driven or read as a boolean level.
type DigitalPin interface {
	Read() bool
	Write(high bool) error
}

// EdgePin is a GPIO line a monitor can block on for a level transition.
// WaitForEdge blocks until the pin transitions or timeout elapses (a
// negative timeout waits forever); rose reports whether the edge seen was
// a low-to-high (rising) transition. ok is false on timeout.
type EdgePin interface {
	WaitForEdge(timeout time.Duration) (rose bool, ok bool)
	Read() bool
}

// AnalogPin is an ADC channel normalized to the range [0.0, 1.0].
type AnalogPin interface {
	Read() (float64, error)
}

// I2CBus is the minimal transport the LCD driver needs: addressed writes
// and reads. The P018 controller's command byte protocol is layered on
// top of this by the lcd package, not by bus.
type I2CBus interface {
	Write(addr uint16, data []byte) error
	Read(addr uint16, n int) ([]byte, error)
}

// LineSource is a line-oriented input: a serial port, stdin, or a
// translated stream of HID key-down events. BadgeReader variants differ
// only in how they construct a LineSource.
type LineSource interface {
	ReadLine() (string, error)
}

// PeriphDigitalPin adapts a periph.io gpio.PinIO to DigitalPin.
func PeriphDigitalPin(p gpio.PinIO, activeHigh bool) DigitalPin {
	return &periphPin{p: p, activeHigh: activeHigh}
}

type periphPin struct {
	p          gpio.PinIO
	activeHigh bool
}

func (p *periphPin) Read() bool {
	lvl := p.p.Read() == gpio.High
	if !p.activeHigh {
		lvl = !lvl
	}
	return lvl
}

func (p *periphPin) Write(high bool) error {
	lvl := gpio.Low
	want := high
	if !p.activeHigh {
		want = !want
	}
	if want {
		lvl = gpio.High
	}
	return p.p.Out(lvl)
}

// PeriphEdgePin adapts a periph.io gpio.PinIn configured for both-edge
// interrupts to EdgePin.
func PeriphEdgePin(p gpio.PinIn) EdgePin {
	return &periphEdgePin{p: p}
}

type periphEdgePin struct {
	p gpio.PinIn
}

func (p *periphEdgePin) Read() bool {
	return p.p.Read() == gpio.High
}

func (p *periphEdgePin) WaitForEdge(timeout time.Duration) (bool, bool) {
	if !p.p.WaitForEdge(timeout) {
		return false, false
	}
	return p.p.Read() == gpio.High, true
}

// GPIOCdevPin adapts a requested github.com/warthog618/go-gpiocdev Line to
// DigitalPin, for controllers that address pins through a Linux gpiochip
// character device instead of periph.io's memory-mapped BCM driver.
func GPIOCdevPin(line *gpiocdev.Line, activeHigh bool) DigitalPin {
	return &gpiocdevPin{line: line, activeHigh: activeHigh}
}

type gpiocdevPin struct {
	line       *gpiocdev.Line
	activeHigh bool
}

func (p *gpiocdevPin) Read() bool {
	v, err := p.line.Value()
	if err != nil {
		return false
	}
	high := v != 0
	if !p.activeHigh {
		high = !high
	}
	return high
}

func (p *gpiocdevPin) Write(high bool) error {
	want := high
	if !p.activeHigh {
		want = !want
	}
	v := 0
	if want {
		v = 1
	}
	return p.line.SetValue(v)
}
