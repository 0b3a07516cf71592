package monitor

import (
	"log/slog"
	"sort"
	"time"

	"github.com/dallas-makerspace/interlock/bus"
	"github.com/dallas-makerspace/interlock/config"
	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/state"
)

const (
	analogPollInterval    = 10 * time.Millisecond
	analogHysteresisSleep = 500 * time.Millisecond
)

// AnalogMonitor is a pure-producer Connection: it polls an ADC channel and
// enqueues the routed state for whichever condition first matches.
type AnalogMonitor struct {
	name   string
	pin    bus.AnalogPin
	routes map[state.State]config.AnalogAction
	queue  *queue.Queue
	logger *slog.Logger

	// orderedStates is precomputed once so match evaluation order is
	// deterministic across runs despite map iteration order.
	orderedStates []state.State
}

// NewAnalogMonitor builds an AnalogMonitor watching pin against routes.
func NewAnalogMonitor(name string, pin bus.AnalogPin, routes map[state.State]config.AnalogAction, q *queue.Queue, logger *slog.Logger) *AnalogMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	ordered := make([]state.State, 0, len(routes))
	for s := range routes {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	return &AnalogMonitor{name: name, pin: pin, routes: routes, queue: q, logger: logger, orderedStates: ordered}
}

// Update is a no-op: AnalogMonitor is a pure producer.
func (a *AnalogMonitor) Update(msg message.Message) error { return nil }

// Run polls the ADC until stop closes, sleeping analogPollInterval between
// samples and analogHysteresisSleep after any match.
func (a *AnalogMonitor) Run(stop <-chan struct{}) {
	for {
		if a.sleep(stop, analogPollInterval) {
			return
		}

		value, err := a.pin.Read()
		if err != nil {
			a.logger.Warn("analog_monitor: read failed", "name", a.name, "error", err)
			continue
		}

		matched := false
		for _, s := range a.orderedStates {
			if a.routes[s].Match(value) {
				a.queue.Enqueue(message.New(s, a.name))
				matched = true
				break
			}
		}
		if matched {
			if a.sleep(stop, analogHysteresisSleep) {
				return
			}
		}
	}
}

func (a *AnalogMonitor) sleep(stop <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-stop:
		return true
	case <-t.C:
		return false
	}
}
