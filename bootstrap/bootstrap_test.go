package bootstrap

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/require"

	"github.com/dallas-makerspace/interlock/bus"
	"github.com/dallas-makerspace/interlock/config"
	"github.com/dallas-makerspace/interlock/queue"
)

// fakeHardware is a no-op Hardware used so tests never touch a real
// device node.
type fakeHardware struct{}

func (fakeHardware) DigitalPin(pin int, activeHigh bool) (bus.DigitalPin, error) {
	return &fakeDigitalPin{}, nil
}
func (fakeHardware) EdgePin(pin int) (bus.EdgePin, error)     { return &fakeEdgePin{}, nil }
func (fakeHardware) AnalogPin(pin int) (bus.AnalogPin, error) { return &fakeAnalogPin{}, nil }
func (fakeHardware) I2CBus(name string) (bus.I2CBus, error)   { return &fakeI2CBus{}, nil }
func (fakeHardware) InputEventDevice(vendor, product uint16) (*evdev.InputDevice, error) {
	return nil, nil
}

type fakeDigitalPin struct{}

func (*fakeDigitalPin) Read() bool        { return false }
func (*fakeDigitalPin) Write(bool) error  { return nil }

type fakeEdgePin struct{}

func (*fakeEdgePin) Read() bool                                { return false }
func (*fakeEdgePin) WaitForEdge(time.Duration) (bool, bool)    { return false, false }

type fakeAnalogPin struct{}

func (*fakeAnalogPin) Read() (float64, error) { return 0, nil }

type fakeI2CBus struct{}

func (*fakeI2CBus) Write(addr uint16, data []byte) error    { return nil }
func (*fakeI2CBus) Read(addr uint16, n int) ([]byte, error) { return nil, nil }

func TestBuildDispatchesStdioOutput(t *testing.T) {
	cfg := config.Config{Connections: map[string]config.ConnectionEntry{
		"console": {Name: "console", Type: "stdio:output", Raw: json.RawMessage(`{
			"type": "stdio:output",
			"ACTIVE": "on"
		}`)},
	}}
	regs, errs := Build(cfg, fakeHardware{}, queue.New(8), slog.Default())
	require.True(t, errs.OK())
	require.Len(t, regs, 1)
	require.Equal(t, "stdio:output", regs[0].Kind)
}

func TestBuildDispatchesHardcodedRFIDs(t *testing.T) {
	cfg := config.Config{Connections: map[string]config.ConnectionEntry{
		"validator": {Name: "validator", Type: "internal:hardcoded_rfids", Raw: json.RawMessage(`{
			"type": "internal:hardcoded_rfids",
			"CHECK_BADGE": {"ACTIVE:when": ["123"]}
		}`)},
	}}
	regs, errs := Build(cfg, fakeHardware{}, queue.New(8), slog.Default())
	require.True(t, errs.OK())
	require.Len(t, regs, 1)
}

func TestBuildUnknownTypeIsRecordedAsError(t *testing.T) {
	cfg := config.Config{Connections: map[string]config.ConnectionEntry{
		"mystery": {Name: "mystery", Type: "bogus:type", Raw: json.RawMessage(`{"type": "bogus:type"}`)},
	}}
	regs, errs := Build(cfg, fakeHardware{}, queue.New(8), slog.Default())
	require.False(t, errs.OK())
	require.Empty(t, regs)
	require.Len(t, errs.Errs(), 1)
}

func TestBuildWebserviceWithHeartbeatRegistersBoth(t *testing.T) {
	cfg := config.Config{Connections: map[string]config.ConnectionEntry{
		"badge_auth": {Name: "badge_auth", Type: "webservice:connection", Raw: json.RawMessage(`{
			"type": "webservice:connection",
			"heartbeat_monitor": "http://127.0.0.1:1/heartbeat",
			"CHECK_BADGE": "http://127.0.0.1:1/auth"
		}`)},
	}}
	regs, errs := Build(cfg, fakeHardware{}, queue.New(8), slog.Default())
	require.True(t, errs.OK())
	require.Len(t, regs, 2)
}

func TestBuildDigitalOutputDecodesSettingsAndRoutes(t *testing.T) {
	cfg := config.Config{Connections: map[string]config.ConnectionEntry{
		"relay": {Name: "relay", Type: "digital:output", Raw: json.RawMessage(`{
			"type": "digital:output",
			"pin": 17,
			"ACTIVE": "ON",
			"INACTIVE": "OFF"
		}`)},
	}}
	regs, errs := Build(cfg, fakeHardware{}, queue.New(8), slog.Default())
	require.True(t, errs.OK())
	require.Len(t, regs, 1)
}

func TestBuildIsDeterministicallyOrderedByName(t *testing.T) {
	cfg := config.Config{Connections: map[string]config.ConnectionEntry{
		"zzz": {Name: "zzz", Type: "stdio:output", Raw: json.RawMessage(`{"type":"stdio:output"}`)},
		"aaa": {Name: "aaa", Type: "stdio:output", Raw: json.RawMessage(`{"type":"stdio:output"}`)},
	}}
	regs, errs := Build(cfg, fakeHardware{}, queue.New(8), slog.Default())
	require.True(t, errs.OK())
	require.Len(t, regs, 2)
	require.Equal(t, "aaa", regs[0].Name)
	require.Equal(t, "zzz", regs[1].Name)
}
