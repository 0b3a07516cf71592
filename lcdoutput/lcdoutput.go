// Package lcdoutput implements the LcdP018Output Connection: a character
// LCD with an RGB backlight that renders the interlock's routed message
// for each state and can temporarily flash an INFO_ONLY message before
// reverting to the last remembered persistent state.
package lcdoutput

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dallas-makerspace/interlock/config"
	"github.com/dallas-makerspace/interlock/lcd"
	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/state"
)

// LcdP018Output is a pure-consumer Connection wrapping an *lcd.LCD.
type LcdP018Output struct {
	name   string
	lcd    *lcd.LCD
	routes map[state.State]config.LCDAction
	logger *slog.Logger

	mu          sync.Mutex
	timer       *time.Timer
	savedStatus state.State
}

// New builds an LcdP018Output and self-inits by running Update(POWER_UP),
// so savedStatus and the display both start from a real call rather than
// a zero value, mirroring the source's own __init__-time self.update call.
func New(name string, l *lcd.LCD, routes map[state.State]config.LCDAction, logger *slog.Logger) *LcdP018Output {
	if logger == nil {
		logger = slog.Default()
	}
	o := &LcdP018Output{name: name, lcd: l, routes: routes, logger: logger, savedStatus: state.PowerUp}
	o.Update(message.New(state.PowerUp, "startup"))
	return o
}

// Update cancels any pending reset-message timer, then renders the action
// mapped for msg.State, if any.
func (o *LcdP018Output) Update(msg message.Message) error {
	o.mu.Lock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.mu.Unlock()

	action, ok := o.routes[msg.State]
	if !ok {
		return nil
	}
	o.render(action)

	if !state.IsInfoOnly(msg.State) {
		o.mu.Lock()
		o.savedStatus = msg.State
		o.mu.Unlock()
	}

	if action.Timeout != nil {
		d := time.Duration(*action.Timeout * float64(time.Second))
		o.mu.Lock()
		o.timer = time.AfterFunc(d, o.resetMessage)
		o.mu.Unlock()
	}
	return nil
}

// resetMessage re-renders the most recently remembered non-INFO_ONLY
// state, restoring the display after a timed-out INFO_ONLY flash.
func (o *LcdP018Output) resetMessage() {
	o.mu.Lock()
	saved := o.savedStatus
	o.mu.Unlock()

	action, ok := o.routes[saved]
	if !ok {
		return
	}
	o.render(action)
}

func (o *LcdP018Output) render(action config.LCDAction) {
	if !o.lcd.Fits(action.Message) {
		o.logger.Warn("lcd_p018: message does not fit geometry, skipping", "name", o.name)
		return
	}
	if err := o.lcd.Write(action.Message, action.Color); err != nil {
		o.logger.Warn("lcd_p018: write failed", "name", o.name, "error", err)
	}
}
