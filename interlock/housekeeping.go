package interlock

import (
	"time"

	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/state"
)

// houseKeep runs before fanout, so that timers observed by outputs
// reflect the state the queue just delivered.
func (i *Interlock) houseKeep(s state.State) {
	switch s {
	case state.Active:
		i.activeMode()
	case state.InactiveSoon:
		i.warningMode()
	case state.Inactive:
		i.inactiveMode()
	case state.Error:
		i.cancelTimers()
	}
}

// activeMode cancels both timers and arms timer_to_warning to fire
// timeout-warning after entering ACTIVE.
func (i *Interlock) activeMode() {
	i.cancelTimers()
	d := i.Timeout - i.Warning
	if d < 0 {
		d = 0
	}
	i.armWarning(d)
}

// warningMode arms timer_to_deactivate, unless we're already in the
// warning window (timer_to_deactivate live, timer_to_warning cleared),
// in which case it's a no-op.
func (i *Interlock) warningMode() {
	alreadyWarning := i.deactivateTimer != nil && i.warningTimer == nil
	if alreadyWarning {
		return
	}
	i.cancelTimers()
	i.armDeactivate(i.Warning)
}

// inactiveMode cancels both timers.
func (i *Interlock) inactiveMode() {
	i.cancelTimers()
}

// handleResetTimer re-arms ACTIVE if either timer was live, and never
// fans RESET_TIMER itself out to Connections.
func (i *Interlock) handleResetTimer(_ message.Message) {
	live := i.warningTimer != nil || i.deactivateTimer != nil
	i.cancelTimers()
	if live {
		i.queue.Enqueue(message.New(state.Active, "reset_timer"))
	}
}

func (i *Interlock) armWarning(d time.Duration) {
	i.warningTimer = time.AfterFunc(d, func() {
		i.queue.Enqueue(message.New(state.InactiveSoon, "timer_to_warning"))
	})
}

func (i *Interlock) armDeactivate(d time.Duration) {
	i.deactivateTimer = time.AfterFunc(d, func() {
		i.queue.Enqueue(message.New(state.Inactive, "timer_to_deactivate"))
	})
}

func (i *Interlock) cancelTimers() {
	if i.warningTimer != nil {
		i.warningTimer.Stop()
		i.warningTimer = nil
	}
	if i.deactivateTimer != nil {
		i.deactivateTimer.Stop()
		i.deactivateTimer = nil
	}
}
