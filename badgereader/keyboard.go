package badgereader

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/dallas-makerspace/interlock/queue"
)

// keyboardLineSource reads lines off an arbitrary reader; in production
// this is the process's standard input.
type keyboardLineSource struct {
	reader *bufio.Reader
}

func (k *keyboardLineSource) ReadLine() (string, error) {
	line, err := k.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return trimLineEnding(line), nil
}

// OpenKeyboard returns a BadgeReader that reads scans typed into r (the
// process's standard input, which most USB HID badge readers present
// themselves as).
func OpenKeyboard(name string, r io.Reader, cfg Config, q *queue.Queue, logger *slog.Logger) *BadgeReader {
	src := &keyboardLineSource{reader: bufio.NewReader(r)}
	return New(name, src, cfg, q, logger)
}
