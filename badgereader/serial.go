package badgereader

import (
	"bufio"
	"fmt"
	"log/slog"

	"github.com/tarm/serial"

	"github.com/dallas-makerspace/interlock/queue"
)

// serialLineSource adapts a tarm/serial port to bus.LineSource.
type serialLineSource struct {
	port   *serial.Port
	reader *bufio.Reader
}

func (s *serialLineSource) ReadLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return trimLineEnding(line), nil
}

// OpenSerial opens device at the given baud rate and returns a BadgeReader
// that reads badge scans off it, grounded on the tarm/serial driver the
// corpus's hardware repos (seedhammer's mjolnir stepper driver) already
// use to open a configured serial port.
func OpenSerial(name, device string, baud int, cfg Config, q *queue.Queue, logger *slog.Logger) (*BadgeReader, error) {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("badgereader: open serial %s: %w", device, err)
	}
	src := &serialLineSource{port: port, reader: bufio.NewReader(port)}
	return New(name, src, cfg, q, logger), nil
}
