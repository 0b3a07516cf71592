package interlock

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dallas-makerspace/interlock/connection"
	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/state"
	"github.com/stretchr/testify/require"
)

// recorder is a test Connection that records every Update call in order.
type recorder struct {
	mu   sync.Mutex
	msgs []message.Message
}

func (r *recorder) Update(msg message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) states() []state.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]state.State, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.State
	}
	return out
}

func waitFor(t *testing.T, r *recorder, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(r.states()) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages, got %v", n, r.states())
}

func newTestInterlock(timeout, warning time.Duration) (*Interlock, *recorder) {
	q := queue.New(16)
	il := New("0xdeadbeef", timeout, warning, q, nil)
	rec := &recorder{}
	il.Register(connection.Registration{Name: "rec", Kind: "test", Handle: rec})
	return il, rec
}

func TestStartupEnqueuesInitialInactive(t *testing.T) {
	il, rec := newTestInterlock(time.Second, 300*time.Millisecond)
	il.Start()
	go il.Run()
	defer il.Stop()

	waitFor(t, rec, 1, time.Second)
	require.Equal(t, []state.State{state.Inactive}, rec.states())
}

func TestActiveTimeoutFlowsThroughWarningToInactive(t *testing.T) {
	// Scenario 1, compressed: timeout=120ms, warning=40ms.
	il, rec := newTestInterlock(120*time.Millisecond, 40*time.Millisecond)
	il.Start()
	go il.Run()
	defer il.Stop()

	waitFor(t, rec, 1, time.Second) // initial INACTIVE
	il.Queue().Enqueue(message.New(state.Active, "test"))

	waitFor(t, rec, 4, time.Second)
	got := rec.states()
	require.Equal(t, []state.State{
		state.Inactive,
		state.Active,
		state.InactiveSoon,
		state.Inactive,
	}, got)
}

func TestAtMostOneTimerLiveAtOnce(t *testing.T) {
	il, _ := newTestInterlock(time.Hour, 30*time.Minute)
	il.Start()
	go il.Run()
	defer il.Stop()

	il.Queue().Enqueue(message.New(state.Active, "test"))
	time.Sleep(20 * time.Millisecond)
	// Re-entering the warning state while already warning must stay a
	// no-op rather than arming a second deactivate timer.
	il.Queue().Enqueue(message.New(state.InactiveSoon, "test"))
	time.Sleep(20 * time.Millisecond)
	il.Queue().Enqueue(message.New(state.InactiveSoon, "test"))
	time.Sleep(20 * time.Millisecond)

	assertAtMostOneTimerLive(t, il)
}

// assertAtMostOneTimerLive asserts the at-most-one-timer invariant
// directly on the Interlock's internal fields. It must only run from the
// test goroutine after quiescing the event loop with a sleep, since the
// loop goroutine is the only other writer of these fields.
func assertAtMostOneTimerLive(t *testing.T, i *Interlock) {
	t.Helper()
	if i.warningTimer != nil && i.deactivateTimer != nil {
		t.Fatalf("both timers live simultaneously")
	}
}

func TestResetTimerWhileIdleIsNoop(t *testing.T) {
	il, rec := newTestInterlock(time.Hour, 30*time.Minute)
	il.Start()
	go il.Run()
	defer il.Stop()

	waitFor(t, rec, 1, time.Second)
	il.Queue().Enqueue(message.New(state.ResetTimer, "test"))
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, []state.State{state.Inactive}, rec.states(), "RESET_TIMER with no live timer must have no effect")
}

func TestResetTimerWhileActiveReenqueuesActive(t *testing.T) {
	il, rec := newTestInterlock(time.Hour, 30*time.Minute)
	il.Start()
	go il.Run()
	defer il.Stop()

	waitFor(t, rec, 1, time.Second)
	il.Queue().Enqueue(message.New(state.Active, "test"))
	waitFor(t, rec, 2, time.Second)
	il.Queue().Enqueue(message.New(state.ResetTimer, "test"))
	waitFor(t, rec, 3, time.Second)

	require.Equal(t, []state.State{state.Inactive, state.Active, state.Active}, rec.states())
}

func TestFanoutIsNeverCalledForResetTimer(t *testing.T) {
	il, rec := newTestInterlock(time.Hour, 30*time.Minute)
	il.Start()
	go il.Run()
	defer il.Stop()

	waitFor(t, rec, 1, time.Second)
	il.Queue().Enqueue(message.New(state.ResetTimer, "test"))
	time.Sleep(30 * time.Millisecond)
	for _, s := range rec.states() {
		require.NotEqual(t, state.ResetTimer, s)
	}
}

func TestLockedOutBroadcastsErrorConfigWithoutRunning(t *testing.T) {
	il, rec := newTestInterlock(time.Second, 300*time.Millisecond)
	il.LockedOut([]error{errors.New("bad config")})

	require.Equal(t, []state.State{state.ErrorConfig}, rec.states())
}
