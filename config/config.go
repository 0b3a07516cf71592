// Package config models the typed, per-connection routing table the
// Interlock and its Connections are built from. Parsing of the underlying
// file format is delegated to encoding/json; this package only gives that
// parsed map a typed shape.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/dallas-makerspace/interlock/state"
)

// Config is the top-level typed view of the configuration document.
// Every key that isn't one of the reserved top-level keys is treated as a
// Connection entry, keyed by its own name.
type Config struct {
	ToolID      string                     `json:"tool_id"`
	Timeout     float64                    `json:"timeout"`
	Warning     float64                    `json:"warning"`
	Logging     json.RawMessage            `json:"logging,omitempty"`
	Connections map[string]ConnectionEntry `json:"connections"`
}

// ConnectionEntry is one Connection's configuration: its type tag plus the
// raw JSON object, which mixes per-state routing (keyed by state name) with
// type-specific settings (e.g. "on", "device", "baud"). Each concrete
// Connection constructor decodes Raw into its own settings struct and
// extracts its per-state routing with States.
type ConnectionEntry struct {
	Name string
	Type string
	Raw  json.RawMessage
}

// Decode unmarshals the entry's raw settings into v. Per-state routing
// keys are simply ignored by encoding/json since they don't match any
// field in a typical settings struct.
func (e ConnectionEntry) Decode(v interface{}) error {
	return json.Unmarshal(e.Raw, v)
}

// States returns the subset of the entry's top-level keys that name a
// known state.State, each mapped to its still-raw action descriptor.
// Unknown (non-state) keys are settings and are silently excluded here,
// not reported as errors: per spec, "Unknown states are silently ignored."
func (e ConnectionEntry) States() map[state.State]json.RawMessage {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(e.Raw, &raw); err != nil {
		return nil
	}
	out := make(map[state.State]json.RawMessage)
	for k, v := range raw {
		s := state.State(k)
		if state.Known(s) {
			out[s] = v
		}
	}
	return out
}

// MarshalJSON flattens Config back into the same shape UnmarshalJSON
// reads: reserved scalar keys plus one key per Connection, so a Config
// served remotely round-trips through the config loader unchanged.
func (c Config) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.Connections)+4)

	toolID, err := json.Marshal(c.ToolID)
	if err != nil {
		return nil, err
	}
	out["tool_id"] = toolID

	timeout, err := json.Marshal(c.Timeout)
	if err != nil {
		return nil, err
	}
	out["timeout"] = timeout

	warning, err := json.Marshal(c.Warning)
	if err != nil {
		return nil, err
	}
	out["warning"] = warning

	if c.Logging != nil {
		out["logging"] = c.Logging
	}

	for name, entry := range c.Connections {
		out[name] = entry.Raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the top-level document into the four reserved
// scalar keys and a map of Connection entries, mirroring the source's flat
// configuration dict with one key per connection.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Connections = make(map[string]ConnectionEntry)
	for key, v := range raw {
		switch key {
		case "timeout":
			if err := json.Unmarshal(v, &c.Timeout); err != nil {
				return NewError("", fmt.Errorf("timeout must be numeric: %w", err))
			}
		case "warning":
			if err := json.Unmarshal(v, &c.Warning); err != nil {
				return NewError("", fmt.Errorf("warning must be numeric: %w", err))
			}
		case "tool_id":
			if err := json.Unmarshal(v, &c.ToolID); err != nil {
				return fmt.Errorf("config: tool_id: %w", err)
			}
		case "logging":
			c.Logging = v
		default:
			var typed struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(v, &typed); err != nil {
				return fmt.Errorf("config: connection %q: %w", key, err)
			}
			c.Connections[key] = ConnectionEntry{Name: key, Type: typed.Type, Raw: v}
		}
	}
	return nil
}
