// Package digitaloutput implements the DigitalOutput Connection: a single
// GPIO line driven on/off, blinked, or pulsed through a Morse SOS pattern
// according to its per-state routing table.
package digitaloutput

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dallas-makerspace/interlock/bus"
	"github.com/dallas-makerspace/interlock/config"
	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/state"
)

const defaultBlinkPeriod = 500 * time.Millisecond

// DigitalOutput is a pure-consumer Connection: it has no producer loop of
// its own, only background goroutines spawned per action and torn down
// when the next action starts.
type DigitalOutput struct {
	name   string
	pin    bus.DigitalPin
	routes map[state.State]config.DigitalAction
	logger *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
	stop  chan struct{}
}

// New builds a DigitalOutput driving pin according to routes. Polarity is
// the adapted pin's concern (see bus.PeriphDigitalPin/GPIOCdevPin), not
// DigitalOutput's.
func New(name string, pin bus.DigitalPin, routes map[state.State]config.DigitalAction, logger *slog.Logger) *DigitalOutput {
	if logger == nil {
		logger = slog.Default()
	}
	return &DigitalOutput{name: name, pin: pin, routes: routes, logger: logger}
}

// Update cancels any in-flight timer or background driver and dispatches
// to the action mapped for msg.State. ERROR with no explicit mapping
// defaults to SOS.
func (d *DigitalOutput) Update(msg message.Message) error {
	action, ok := d.routes[msg.State]
	if !ok {
		if msg.State != state.Error {
			return nil
		}
		action = config.DigitalAction{Op: config.OpSOS}
	}

	d.cancelCurrent()

	switch action.Op {
	case config.OpOn:
		d.driveOneShot(true, action.Seconds)
	case config.OpOff:
		d.driveOneShot(false, action.Seconds)
	case config.OpBlink:
		period := defaultBlinkPeriod
		if action.Seconds != nil {
			period = secondsToDuration(*action.Seconds)
		}
		d.startBackground(func(stop chan struct{}) { d.blinkLoop(stop, period) })
	case config.OpSOS:
		d.startBackground(d.sosLoop)
	default:
		d.logger.Warn("digital_output: unmapped operation", "name", d.name, "op", action.Op)
	}
	return nil
}

// cancelCurrent stops any running one-shot timer or background goroutine.
// Called at the start of every Update so at most one driver ever touches
// the pin.
func (d *DigitalOutput) cancelCurrent() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
}

func (d *DigitalOutput) driveOneShot(level bool, seconds *float64) {
	if err := d.pin.Write(level); err != nil {
		d.logger.Warn("digital_output: write failed", "name", d.name, "error", err)
	}
	if seconds == nil {
		return
	}
	d.mu.Lock()
	d.timer = time.AfterFunc(secondsToDuration(*seconds), func() {
		if err := d.pin.Write(!level); err != nil {
			d.logger.Warn("digital_output: write failed", "name", d.name, "error", err)
		}
	})
	d.mu.Unlock()
}

func (d *DigitalOutput) startBackground(run func(stop chan struct{})) {
	stop := make(chan struct{})
	d.mu.Lock()
	d.stop = stop
	d.mu.Unlock()
	go run(stop)
}

func (d *DigitalOutput) blinkLoop(stop chan struct{}, period time.Duration) {
	level := false
	for {
		if err := d.pin.Write(level); err != nil {
			d.logger.Warn("digital_output: write failed", "name", d.name, "error", err)
		}
		select {
		case <-stop:
			return
		case <-time.After(period):
		}
		level = !level
	}
}

// sosLoop pulses dot-dot-dot, dash-dash-dash, dot-dot-dot with a uniform
// 0.3s gap between every element (the only gap duration named), pausing
// 2s between repeats of the full sequence.
func (d *DigitalOutput) sosLoop(stop chan struct{}) {
	const (
		dot = 300 * time.Millisecond
		dash = time.Second
		gap = 300 * time.Millisecond
	)
	cycleGap := 2 * time.Second

	sequence := []struct {
		on  bool
		dur time.Duration
	}{
		{true, dot}, {false, gap}, {true, dot}, {false, gap}, {true, dot}, {false, gap},
		{true, dash}, {false, gap}, {true, dash}, {false, gap}, {true, dash}, {false, gap},
		{true, dot}, {false, gap}, {true, dot}, {false, gap}, {true, dot}, {false, cycleGap},
	}

	for {
		for _, step := range sequence {
			if err := d.pin.Write(step.on); err != nil {
				d.logger.Warn("digital_output: write failed", "name", d.name, "error", err)
			}
			select {
			case <-stop:
				return
			case <-time.After(step.dur):
			}
		}
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
