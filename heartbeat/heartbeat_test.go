package heartbeat

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/state"
	"github.com/stretchr/testify/require"
)

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

func TestUpdateTracksOnlyListedStates(t *testing.T) {
	h := New("hb", "http://example.invalid", queue.New(1), nil)
	require.NoError(t, h.Update(message.New(state.CheckBadge, "test")))
	require.Equal(t, state.PowerUp, h.mode())

	require.NoError(t, h.Update(message.New(state.Active, "test")))
	require.Equal(t, state.Active, h.mode())
}

func TestRunEnqueuesErrorNetworkWhenBackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	q := queue.New(4)
	h := New("hb", srv.URL, q, nil)
	require.NoError(t, h.Update(message.New(state.Inactive, "test")))

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	msgs := drain(q, 1, time.Second)
	require.Len(t, msgs, 1)
	require.Equal(t, state.ErrorNetwork, msgs[0].State)
}

func TestRunDoesNotReenqueueErrorNetworkWhileAlreadyInError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	q := queue.New(4)
	h := New("hb", srv.URL, q, nil)
	require.NoError(t, h.Update(message.New(state.ErrorNetwork, "test")))

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	msgs := drain(q, 1, 300*time.Millisecond)
	require.Empty(t, msgs, "already in an error state, should not re-announce it")
}

func TestRunEnqueuesInactiveOnRecoveryFromError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	q := queue.New(4)
	h := New("hb", srv.URL, q, nil)
	require.NoError(t, h.Update(message.New(state.ErrorNetwork, "test")))

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	msgs := drain(q, 1, time.Second)
	require.Len(t, msgs, 1)
	require.Equal(t, state.Inactive, msgs[0].State)
}

func TestRunDoesNotProbeWhileActive(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	q := queue.New(4)
	h := New("hb", srv.URL, q, nil)
	require.NoError(t, h.Update(message.New(state.Active, "test")))

	stop := make(chan struct{})
	go h.Run(stop)
	time.Sleep(100 * time.Millisecond)
	close(stop)

	require.False(t, called, "heartbeat must not probe while the tool is active")
}
