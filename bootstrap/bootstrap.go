// Package bootstrap wires a config.Config into a registry of Connections,
// dispatching each entry by its "type" tag to the concrete Connection
// package that implements it, generalized from one hard-coded tool wiring
// to an arbitrary configured set.
package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dallas-makerspace/interlock/badgereader"
	"github.com/dallas-makerspace/interlock/config"
	"github.com/dallas-makerspace/interlock/connection"
	"github.com/dallas-makerspace/interlock/digitaloutput"
	"github.com/dallas-makerspace/interlock/hardcodedrfids"
	"github.com/dallas-makerspace/interlock/lcd"
	"github.com/dallas-makerspace/interlock/lcdoutput"
	"github.com/dallas-makerspace/interlock/monitor"
	"github.com/dallas-makerspace/interlock/mqttout"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/state"
	"github.com/dallas-makerspace/interlock/stdio"
	"github.com/dallas-makerspace/interlock/webservice"
)

// ErrorArrayHandler is an in-memory aggregator of configuration errors
// discovered while building Connections: it collects every problem
// instead of failing on the first one, so an operator sees the whole
// picture before the system enters locked-out.
type ErrorArrayHandler struct {
	errs []error
}

// Add records err if non-nil.
func (h *ErrorArrayHandler) Add(err error) {
	if err != nil {
		h.errs = append(h.errs, err)
	}
}

// Errs returns every error recorded so far.
func (h *ErrorArrayHandler) Errs() []error {
	return h.errs
}

// OK reports whether no errors have been recorded.
func (h *ErrorArrayHandler) OK() bool {
	return len(h.errs) == 0
}

// Build constructs a Connection registration for every entry in
// cfg.Connections, dispatching on its type tag. Entries referencing
// digital pins, GPIO edges, I2C or HID badge readers ask hw to open the
// underlying resource; serial:badge_reader opens its configured serial
// device directly. Every discovered problem — an unknown type tag, a failed hardware
// open, a malformed settings object — is recorded on errs rather than
// aborting the whole build, so the caller can report everything at once
// and decide between running and locking out.
func Build(cfg config.Config, hw Hardware, q *queue.Queue, logger *slog.Logger) ([]connection.Registration, *ErrorArrayHandler) {
	if logger == nil {
		logger = slog.Default()
	}
	errs := &ErrorArrayHandler{}
	var regs []connection.Registration

	// Map iteration order is not stable; sort names so registration order
	// (and therefore fanout order) is deterministic across runs.
	names := make([]string, 0, len(cfg.Connections))
	for name := range cfg.Connections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := cfg.Connections[name]
		built, err := build(name, entry, cfg.ToolID, hw, q, logger)
		if err != nil {
			errs.Add(config.NewError(name, err))
			continue
		}
		regs = append(regs, built...)
	}
	return regs, errs
}

func build(name string, entry config.ConnectionEntry, toolID string, hw Hardware, q *queue.Queue, logger *slog.Logger) ([]connection.Registration, error) {
	switch entry.Type {
	case "digital:output":
		var settings config.DigitalOutputSettings
		if err := entry.Decode(&settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		activeHigh := settings.On != "LOW"
		pin, err := hw.DigitalPin(settings.Pin, activeHigh)
		if err != nil {
			return nil, err
		}
		routes := decodeDigitalActions(entry, logger)
		out := digitaloutput.New(name, pin, routes, logger)
		return one(name, entry.Type, out), nil

	case "stdio:output":
		routes := decodeStringActions(entry, logger)
		out := stdio.New(name, os.Stdout, routes, logger)
		return one(name, entry.Type, out), nil

	case "lcd_p018:output":
		var settings config.LCDSettings
		if err := entry.Decode(&settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		i2cBus, err := hw.I2CBus(settings.I2CBus)
		if err != nil {
			return nil, err
		}
		routes := decodeLCDActions(entry, logger)
		out := lcdoutput.New(name, lcd.Open(i2cBus), routes, logger)
		return one(name, entry.Type, out), nil

	case "webservice:connection":
		var settings webservice.Settings
		if err := entry.Decode(&settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		routes := decodeValidatorActions(entry, logger)
		ws, hb := webservice.New(name, toolID, routes, settings, q, logger)
		regs := one(name, entry.Type, ws)
		if hb != nil {
			regs = append(regs, connection.Registration{Name: name + ".heartbeat", Kind: "network:heartbeat", Handle: hb})
		}
		return regs, nil

	case "serial:badge_reader":
		var settings struct {
			badgereader.Config
			config.SerialBadgeReaderSettings
		}
		if err := entry.Decode(&settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		r, err := badgereader.OpenSerial(name, settings.Device, settings.Baud, settings.Config, q, logger)
		if err != nil {
			return nil, err
		}
		return one(name, entry.Type, r), nil

	case "stdio:badge_reader":
		var settings badgereader.Config
		if err := entry.Decode(&settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		r := badgereader.OpenKeyboard(name, os.Stdin, settings, q, logger)
		return one(name, entry.Type, r), nil

	case "input_event:badge_reader":
		var settings struct {
			badgereader.Config
			config.InputEventBadgeReaderSettings
		}
		if err := entry.Decode(&settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		device, err := hw.InputEventDevice(settings.Vendor, settings.Product)
		if err != nil {
			return nil, err
		}
		r, err := badgereader.OpenInputEvent(name, device, nil, settings.Config, q, logger)
		if err != nil {
			return nil, err
		}
		return one(name, entry.Type, r), nil

	case "analog:monitor":
		var settings config.AnalogMonitorSettings
		if err := entry.Decode(&settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		pin, err := hw.AnalogPin(settings.Pin)
		if err != nil {
			return nil, err
		}
		routes := decodeAnalogActions(entry, logger)
		mon := monitor.NewAnalogMonitor(name, pin, routes, q, logger)
		return one(name, entry.Type, mon), nil

	case "digital:monitor":
		var settings config.DigitalMonitorSettings
		if err := entry.Decode(&settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		pin, err := hw.EdgePin(settings.Pin)
		if err != nil {
			return nil, err
		}
		routes := map[config.Edge]state.State{}
		if settings.Falling != nil {
			routes[config.EdgeFalling] = *settings.Falling
		}
		if settings.Rising != nil {
			routes[config.EdgeRising] = *settings.Rising
		}
		mon := monitor.NewDigitalMonitor(name, pin, routes, q, logger)
		return one(name, entry.Type, mon), nil

	case "internal:hardcoded_rfids":
		entries, err := rawEntries(entry)
		if err != nil {
			return nil, err
		}
		h := hardcodedrfids.New(name, entries, q, logger)
		return one(name, entry.Type, h), nil

	case "mqtt:output":
		var settings mqttout.Settings
		if err := entry.Decode(&settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		out, err := mqttout.New(name, toolID, settings, logger)
		if err != nil {
			return nil, err
		}
		return one(name, entry.Type, out), nil

	default:
		return nil, fmt.Errorf("unknown connection type %q", entry.Type)
	}
}

func one(name, kind string, handle connection.Connection) []connection.Registration {
	return []connection.Registration{{Name: name, Kind: kind, Handle: handle}}
}
