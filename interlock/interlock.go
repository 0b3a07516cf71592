// Package interlock implements the event-driven interlock state machine:
// a single serialized event queue, timer/warning housekeeping, and a
// fanout to every registered Connection, acting as the tool's own kernel.
package interlock

import (
	"log/slog"
	"time"

	"github.com/dallas-makerspace/interlock/connection"
	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/sdnotify"
	"github.com/dallas-makerspace/interlock/state"
)

// Interlock is the sole consumer of its event queue. Everything it
// mutates — the two timer handles, the connection registry — is touched
// only from the goroutine running Run, so no locking is needed: Register
// must be called before Run starts.
type Interlock struct {
	ToolID  string
	Timeout time.Duration
	Warning time.Duration

	queue       *queue.Queue
	logger      *slog.Logger
	connections []connection.Registration
	stop        chan struct{}

	warningTimer    *time.Timer
	deactivateTimer *time.Timer
}

// New builds an Interlock around q. timeout and warning are the
// configured durations; toolID should already be resolved
// (explicit config value or config.DeriveToolID's result).
func New(toolID string, timeout, warning time.Duration, q *queue.Queue, logger *slog.Logger) *Interlock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interlock{
		ToolID:  toolID,
		Timeout: timeout,
		Warning: warning,
		queue:   q,
		logger:  logger,
		stop:    make(chan struct{}),
	}
}

// Queue returns the shared event queue, for constructing Connections that
// need to enqueue their own messages.
func (i *Interlock) Queue() *queue.Queue {
	return i.queue
}

// Register adds a Connection to the registry. Must be called before Run.
func (i *Interlock) Register(reg connection.Registration) {
	i.connections = append(i.connections, reg)
}

// Connections returns the registry in registration order.
func (i *Interlock) Connections() []connection.Registration {
	return i.connections
}

// LockedOut delivers ERROR_CONFIG to every registered Connection and
// returns without starting the main loop: the documented recovery
// behavior for a configuration failure discovered at startup.
func (i *Interlock) LockedOut(errs []error) {
	for _, err := range errs {
		i.logger.Error("configuration error; entering locked-out mode", "error", err)
	}
	i.fanout(message.New(state.ErrorConfig, "locked_out"))
}

// Start launches every Producer Connection's background task and seeds
// the queue with the initial power-up transition. POWER_UP itself is not
// broadcast here: WebService, LcdP018Output and StdioOutput each call their
// own Update(POWER_UP) during construction, before Start is ever called,
// so Start only needs to get the real state machine moving.
func (i *Interlock) Start() {
	for _, reg := range i.connections {
		if p, ok := reg.Handle.(connection.Producer); ok {
			go p.Run(i.stop)
		}
	}
	i.queue.Enqueue(message.New(state.Inactive, "initial power up"))
}

// Stop signals every Producer Connection's background task to exit. It
// does not drain or close the event queue.
func (i *Interlock) Stop() {
	close(i.stop)
}

// Run is the main loop: it blocks forever, dequeuing one Message at a
// time, running internal housekeeping before fanning the message out to
// every Connection. Callers typically call Start then Run from the main
// goroutine.
func (i *Interlock) Run() {
	for {
		msg := i.queue.Dequeue()
		if msg.State == state.ResetTimer {
			i.handleResetTimer(msg)
			continue
		}
		i.houseKeep(msg.State)
		i.fanout(msg)
	}
}

func (i *Interlock) fanout(msg message.Message) {
	i.logger.Debug("state changed", "state", msg.State)
	sdnotify.Status(string(msg.State))
	for _, reg := range i.connections {
		if err := reg.Handle.Update(msg); err != nil {
			i.logger.Error("connection update failed", "connection", reg.Name, "kind", reg.Kind, "error", err)
		}
	}
}
