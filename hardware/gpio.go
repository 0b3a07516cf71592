// Package hardware adapts real Linux GPIO chips and HID input devices to
// the bus package's capability interfaces. It is the concrete collaborator
// bootstrap.Build injects so that chip/device discovery — which pin
// belongs to which connection, which /dev/gpiochipN is the SoC's own
// controller — stays outside the wiring logic, same as the source's own
// findGpioChip/findBadgeReader helpers stayed outside its Connection code.
package hardware

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/dallas-makerspace/interlock/bus"
)

// WantedChipPrefix is the gpiochip label prefix DiscoverChip looks for,
// matching the Raspberry Pi SoC's own pin controller rather than a USB
// GPIO expander or some other chip enumerated on the same system.
const WantedChipPrefix = "pinctrl-bcm2"

// EdgeDebounce is applied to every requested edge-detect line.
const EdgeDebounce = 100 * time.Millisecond

// Chip wraps a requested gpiochip character device and hands out
// DigitalPin/EdgePin adapters for individual lines.
type Chip struct {
	chip *gpiocdev.Chip

	mu    sync.Mutex
	lines []*gpiocdev.Line
}

// DiscoverChip globs /dev/gpiochip* and returns the first chip whose label
// carries prefix, ported from the source's findGpioChip.
func DiscoverChip(consumer, prefix string) (*Chip, error) {
	paths, err := filepath.Glob("/dev/gpiochip*")
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		c, err := gpiocdev.NewChip(p, gpiocdev.WithConsumer(consumer))
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(c.Label, prefix) {
			return &Chip{chip: c}, nil
		}
		c.Close()
	}
	return nil, fmt.Errorf("hardware: no GPIO chip found amongst %d devices with prefix %q", len(paths), prefix)
}

// Close releases every line this Chip has requested and the chip itself.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		l.Close()
	}
	return c.chip.Close()
}

// DigitalPin requests pin as an output line, initially low, and returns a
// bus.DigitalPin driving it. activeHigh is handled entirely by
// bus.GPIOCdevPin; this method only owns the character-device request.
func (c *Chip) DigitalPin(pin int, activeHigh bool) (bus.DigitalPin, error) {
	line, err := c.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("hardware: request output line %d: %w", pin, err)
	}
	c.track(line)
	return bus.GPIOCdevPin(line, activeHigh), nil
}

// EdgePin requests pin as a debounced, both-edges input line and returns a
// bus.EdgePin a monitor can block on, ported from the source's commented
// "+/watch" handler (RequestLine with WithBothEdges/DebounceOption/
// WithEventHandler) but exposed as a blocking call instead of a pub/sub
// callback, matching bus.EdgePin's WaitForEdge contract.
func (c *Chip) EdgePin(pin int) (bus.EdgePin, error) {
	events := make(chan gpiocdev.LineEvent, 4)
	line, err := c.chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.DebounceOption(EdgeDebounce),
		gpiocdev.WithEventHandler(func(le gpiocdev.LineEvent) {
			select {
			case events <- le:
			default:
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("hardware: request edge line %d: %w", pin, err)
	}
	c.track(line)
	return &edgePin{line: line, events: events}, nil
}

func (c *Chip) track(l *gpiocdev.Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, l)
}

// edgePin adapts a gpiocdev.Line with a registered event handler to
// bus.EdgePin, turning the library's callback delivery into a blocking
// WaitForEdge call.
type edgePin struct {
	line   *gpiocdev.Line
	events chan gpiocdev.LineEvent
}

func (p *edgePin) Read() bool {
	v, err := p.line.Value()
	return err == nil && v != 0
}

func (p *edgePin) WaitForEdge(timeout time.Duration) (rose bool, ok bool) {
	if timeout < 0 {
		le := <-p.events
		return le.Type == gpiocdev.LineEventRisingEdge, true
	}
	select {
	case le := <-p.events:
		return le.Type == gpiocdev.LineEventRisingEdge, true
	case <-time.After(timeout):
		return false, false
	}
}
