// Package sdnotify implements the systemd readiness/status protocol: a
// single datagram written to the Unix socket named by $NOTIFY_SOCKET.
package sdnotify

import (
	"fmt"
	"net"
	"os"
)

// Notify sends state to the systemd notify socket. It reports false, nil
// when NOTIFY_SOCKET is unset (not running under systemd), which is not an
// error.
func Notify(state string) (bool, error) {
	socketAddr := &net.UnixAddr{
		Name: os.Getenv("NOTIFY_SOCKET"),
		Net:  "unixgram",
	}
	if socketAddr.Name == "" {
		return false, nil
	}
	conn, err := net.DialUnix(socketAddr.Net, nil, socketAddr)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(state)); err != nil {
		return false, err
	}
	return true, nil
}

// Ready announces READY=1.
func Ready() (bool, error) {
	return Notify("READY=1")
}

// Status announces a free-form STATUS= line, visible in `systemctl status`.
func Status(format string, args ...interface{}) (bool, error) {
	return Notify("STATUS=" + fmt.Sprintf(format, args...))
}

// Stopping announces STOPPING=1 during graceful shutdown.
func Stopping() (bool, error) {
	return Notify("STOPPING=1")
}
