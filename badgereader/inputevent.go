package badgereader

import (
	"log/slog"

	"github.com/holoplot/go-evdev"

	"github.com/dallas-makerspace/interlock/queue"
)

// ScanCodeMap translates an evdev key code to the character it should
// append to the accumulating line.
type ScanCodeMap map[evdev.EvCode]rune

// DefaultScanCodeMap maps the digit row to its default behavior: "the
// default: digits 0–9, Enter terminates a line."
var DefaultScanCodeMap = ScanCodeMap{
	evdev.KEY_0: '0', evdev.KEY_1: '1', evdev.KEY_2: '2', evdev.KEY_3: '3',
	evdev.KEY_4: '4', evdev.KEY_5: '5', evdev.KEY_6: '6', evdev.KEY_7: '7',
	evdev.KEY_8: '8', evdev.KEY_9: '9',
}

// inputEventLineSource accumulates key-down events from a HID device into
// lines, terminated by Enter. Grounded on the makerspace authbox's badge
// reader key-accumulator loop (gauthbox.BadgeReader), simplified to the
// digit-only default scan map a keypad badge reader needs.
type inputEventLineSource struct {
	device *evdev.InputDevice
	scan   ScanCodeMap
	lines  chan string
}

// OpenInputEvent grabs device exclusively and returns a BadgeReader that
// reads badge scans as HID key-down events, translated via scan (nil uses
// DefaultScanCodeMap).
func OpenInputEvent(name string, device *evdev.InputDevice, scan ScanCodeMap, cfg Config, q *queue.Queue, logger *slog.Logger) (*BadgeReader, error) {
	if scan == nil {
		scan = DefaultScanCodeMap
	}
	if err := device.Grab(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	src := &inputEventLineSource{device: device, scan: scan, lines: make(chan string)}
	go src.accumulate(logger)
	return New(name, src, cfg, q, logger), nil
}

func (s *inputEventLineSource) ReadLine() (string, error) {
	line, ok := <-s.lines
	if !ok {
		return "", errClosed
	}
	return line, nil
}

// accumulate reads key-down events and builds lines, mirroring the
// teacher's badge-reader event loop: only key-down (Value != 0) events
// matter, and KEY_ENTER flushes the accumulated line.
func (s *inputEventLineSource) accumulate(logger *slog.Logger) {
	defer close(s.lines)
	var line []rune
	for {
		e, err := s.device.ReadOne()
		if err != nil {
			logger.Warn("badge reader: could not read HID event", "error", err)
			return
		}
		if e.Type != evdev.EV_KEY || e.Value == 0 {
			continue
		}
		if e.Code == evdev.KEY_ENTER {
			s.lines <- string(line)
			line = line[:0]
			continue
		}
		if r, ok := s.scan[e.Code]; ok {
			line = append(line, r)
		}
	}
}
