package badgereader

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/state"
	"github.com/stretchr/testify/require"
)

// fakeLineSource returns fed lines in order, one per ReadLine call,
// polling until the caller feeds the next one.
type fakeLineSource struct {
	mu    sync.Mutex
	lines []string
	idx   int
}

func (f *fakeLineSource) feed(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
}

func (f *fakeLineSource) ReadLine() (string, error) {
	for {
		f.mu.Lock()
		if f.idx < len(f.lines) {
			l := f.lines[f.idx]
			f.idx++
			f.mu.Unlock()
			return l, nil
		}
		f.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
}

func drain(q *queue.Queue, n int, timeout time.Duration) []message.Message {
	var out []message.Message
	deadline := time.Now().Add(timeout)
	for len(out) < n && time.Now().Before(deadline) {
		select {
		case m := <-q.C():
			out = append(out, m)
		case <-time.After(time.Millisecond):
		}
	}
	return out
}

func TestSwipeInProducesCheckBadge(t *testing.T) {
	src := &fakeLineSource{}
	q := queue.New(4)
	br := New("r1", src, Config{}, q, nil)
	stop := make(chan struct{})
	go br.Run(stop)
	defer close(stop)

	src.feed("a") // hex "a" = decimal 10

	msgs := drain(q, 1, time.Second)
	require.Len(t, msgs, 1)
	require.Equal(t, state.CheckBadge, msgs[0].State)
	require.Equal(t, "10", msgs[0].BadgeID)
}

func TestSwipeOutAfterActiveProducesInactive(t *testing.T) {
	src := &fakeLineSource{}
	q := queue.New(4)
	br := New("r1", src, Config{}, q, nil)
	stop := make(chan struct{})
	go br.Run(stop)
	defer close(stop)

	require.NoError(t, br.Update(message.New(state.Active, "test")))
	src.feed("a")

	msgs := drain(q, 1, time.Second)
	require.Len(t, msgs, 1)
	require.Equal(t, state.Inactive, msgs[0].State)
}

func TestTransientStateDoesNotAdvanceLastStatus(t *testing.T) {
	br := New("r1", &fakeLineSource{}, Config{}, queue.New(4), nil)
	require.NoError(t, br.Update(message.New(state.Active, "test")))
	require.NoError(t, br.Update(message.New(state.CheckBadge, "test")))
	require.Equal(t, state.Active, br.lastStatus)
}

func TestDebounceSuppressesRepeatWithinWindow(t *testing.T) {
	src := &fakeLineSource{}
	q := queue.New(4)
	br := New("r1", src, Config{}, q, nil)
	stop := make(chan struct{})
	go br.Run(stop)
	defer close(stop)

	src.feed("a")
	src.feed("a")

	msgs := drain(q, 2, 200*time.Millisecond)
	require.Len(t, msgs, 1, "exactly one CHECK_BADGE expected for a debounced duplicate")
}

func TestUnparseableBadgeIsDiscarded(t *testing.T) {
	src := &fakeLineSource{}
	q := queue.New(4)
	br := New("r1", src, Config{}, q, nil)
	stop := make(chan struct{})
	go br.Run(stop)
	defer close(stop)

	src.feed("not-hex")

	msgs := drain(q, 1, 100*time.Millisecond)
	require.Empty(t, msgs)
}

func TestDecodeAppliesLiteralSliceNotSkipPlusLen(t *testing.T) {
	skip, length := 1, 3
	cfg := Config{CodeSkipChars: &skip, CodeLen: &length}
	// raw[1:3], not raw[1:1+3]
	got, ok := decode("0123456789", cfg)
	require.True(t, ok)
	require.Equal(t, "18", got) // "12" base 16 == 18 decimal
}

func TestRunStopsOnSourceError(t *testing.T) {
	errSrc := errorLineSource{err: errors.New("boom")}
	br := New("r1", errSrc, Config{}, queue.New(1), nil)
	done := make(chan struct{})
	go func() {
		br.Run(nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after source error")
	}
}

type errorLineSource struct{ err error }

func (e errorLineSource) ReadLine() (string, error) { return "", e.err }
