package sdnotify

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotifyIsNoopWithoutSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	sent, err := Notify("READY=1")
	require.NoError(t, err)
	require.False(t, sent)
}

func TestNotifyWritesToSocket(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "notify.sock")
	addr := &net.UnixAddr{Name: sockPath, Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	require.NoError(t, err)
	defer conn.Close()

	t.Setenv("NOTIFY_SOCKET", sockPath)

	sent, err := Ready()
	require.NoError(t, err)
	require.True(t, sent)

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "READY=1", string(buf[:n]))
}

func TestStatusFormatsMessage(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "notify.sock")
	addr := &net.UnixAddr{Name: sockPath, Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	require.NoError(t, err)
	defer conn.Close()

	t.Setenv("NOTIFY_SOCKET", sockPath)

	_, err = Status("mqtt: connected to %s", "broker.local")
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "STATUS=mqtt: connected to broker.local", string(buf[:n]))
}
