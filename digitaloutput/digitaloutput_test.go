package digitaloutput

import (
	"sync"
	"testing"
	"time"

	"github.com/dallas-makerspace/interlock/config"
	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/state"
	"github.com/stretchr/testify/require"
)

type fakePin struct {
	mu     sync.Mutex
	level  bool
	writes int
}

func (p *fakePin) Read() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *fakePin) Write(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = high
	p.writes++
	return nil
}

func (p *fakePin) snapshot() (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, p.writes
}

func seconds(s float64) *float64 { return &s }

func TestOnDrivesLineHigh(t *testing.T) {
	pin := &fakePin{}
	do := New("relay", pin, map[state.State]config.DigitalAction{
		state.Active: {Op: config.OpOn},
	}, nil)

	require.NoError(t, do.Update(message.New(state.Active, "test")))
	level, _ := pin.snapshot()
	require.True(t, level)
}

func TestOnWithSecondsAutoOffs(t *testing.T) {
	pin := &fakePin{}
	do := New("relay", pin, map[state.State]config.DigitalAction{
		state.Active: {Op: config.OpOn, Seconds: seconds(0.05)},
	}, nil)

	require.NoError(t, do.Update(message.New(state.Active, "test")))
	require.Eventually(t, func() bool {
		level, _ := pin.snapshot()
		return !level
	}, time.Second, time.Millisecond)
}

func TestBlinkTogglesPeriodically(t *testing.T) {
	pin := &fakePin{}
	do := New("led", pin, map[state.State]config.DigitalAction{
		state.InactiveSoon: {Op: config.OpBlink, Seconds: seconds(0.01)},
	}, nil)

	require.NoError(t, do.Update(message.New(state.InactiveSoon, "test")))
	require.Eventually(t, func() bool {
		_, writes := pin.snapshot()
		return writes > 3
	}, time.Second, time.Millisecond)
}

func TestUnmappedErrorDefaultsToSOS(t *testing.T) {
	pin := &fakePin{}
	do := New("led", pin, map[state.State]config.DigitalAction{}, nil)

	require.NoError(t, do.Update(message.New(state.Error, "test")))
	require.Eventually(t, func() bool {
		_, writes := pin.snapshot()
		return writes > 0
	}, time.Second, time.Millisecond)
}

func TestUnmappedNonErrorStateIsNoop(t *testing.T) {
	pin := &fakePin{}
	do := New("led", pin, map[state.State]config.DigitalAction{}, nil)

	require.NoError(t, do.Update(message.New(state.Inactive, "test")))
	_, writes := pin.snapshot()
	require.Zero(t, writes)
}

func TestNewActionCancelsPreviousBlink(t *testing.T) {
	pin := &fakePin{}
	do := New("led", pin, map[state.State]config.DigitalAction{
		state.InactiveSoon: {Op: config.OpBlink, Seconds: seconds(0.005)},
		state.Active:       {Op: config.OpOn},
	}, nil)

	require.NoError(t, do.Update(message.New(state.InactiveSoon, "test")))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, do.Update(message.New(state.Active, "test")))

	// Let the cancelled blink goroutine observe its closed stop channel
	// (well past its 5ms period) before asserting the line has settled.
	time.Sleep(50 * time.Millisecond)
	level, writesAtSettle := pin.snapshot()
	require.True(t, level)

	time.Sleep(30 * time.Millisecond)
	levelAfter, writesAfter := pin.snapshot()

	require.True(t, levelAfter)
	require.Equal(t, writesAtSettle, writesAfter, "no further writes once the cancelled blink has stopped")
}
