package badgereader

import (
	"errors"
	"strings"
)

// errClosed is returned by a LineSource once its underlying stream ends.
var errClosed = errors.New("badgereader: line source closed")

// trimLineEnding strips trailing \r and \n from a line read off a
// bufio.Reader, which ReadString('\n') otherwise leaves attached.
func trimLineEnding(s string) string {
	return strings.TrimRight(s, "\r\n")
}
