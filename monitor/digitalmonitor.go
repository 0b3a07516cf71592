// Package monitor implements the two producer-only input Connections that
// watch a GPIO line or an ADC channel and translate transitions/readings
// into interlock state messages.
package monitor

import (
	"log/slog"
	"time"

	"github.com/dallas-makerspace/interlock/bus"
	"github.com/dallas-makerspace/interlock/config"
	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/state"
)

// edgePollTimeout bounds each WaitForEdge call so Run can notice a closed
// stop channel even while idle.
const edgePollTimeout = 200 * time.Millisecond

// DigitalMonitor is a pure-producer Connection: it owns a GPIO pin and
// enqueues a routed state whenever the pin transitions.
type DigitalMonitor struct {
	name   string
	pin    bus.EdgePin
	routes map[config.Edge]state.State
	queue  *queue.Queue
	logger *slog.Logger
}

// NewDigitalMonitor builds a DigitalMonitor watching pin for the edges
// named in routes.
func NewDigitalMonitor(name string, pin bus.EdgePin, routes map[config.Edge]state.State, q *queue.Queue, logger *slog.Logger) *DigitalMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DigitalMonitor{name: name, pin: pin, routes: routes, queue: q, logger: logger}
}

// Update is a no-op: DigitalMonitor is a pure producer.
func (d *DigitalMonitor) Update(msg message.Message) error { return nil }

// Run polls for edge transitions until stop closes.
func (d *DigitalMonitor) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		rose, ok := d.pin.WaitForEdge(edgePollTimeout)
		if !ok {
			continue
		}

		edge := config.EdgeFalling
		if rose {
			edge = config.EdgeRising
		}
		if target, ok := d.routes[edge]; ok {
			d.queue.Enqueue(message.New(target, d.name))
		}
	}
}
