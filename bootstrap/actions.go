package bootstrap

import (
	"encoding/json"
	"log/slog"

	"github.com/dallas-makerspace/interlock/config"
	"github.com/dallas-makerspace/interlock/state"
)

// decodeDigitalActions reads entry's per-state routing as DigitalActions,
// skipping (and logging) any state whose action doesn't decode.
func decodeDigitalActions(entry config.ConnectionEntry, logger *slog.Logger) map[state.State]config.DigitalAction {
	out := make(map[state.State]config.DigitalAction)
	for s, raw := range entry.States() {
		var a config.DigitalAction
		if err := json.Unmarshal(raw, &a); err != nil {
			logger.Warn("bootstrap: could not decode digital action", "connection", entry.Name, "state", s, "error", err)
			continue
		}
		out[s] = a
	}
	return out
}

// decodeLCDActions reads entry's per-state routing as LCDActions.
func decodeLCDActions(entry config.ConnectionEntry, logger *slog.Logger) map[state.State]config.LCDAction {
	out := make(map[state.State]config.LCDAction)
	for s, raw := range entry.States() {
		var a config.LCDAction
		if err := json.Unmarshal(raw, &a); err != nil {
			logger.Warn("bootstrap: could not decode lcd action", "connection", entry.Name, "state", s, "error", err)
			continue
		}
		out[s] = a
	}
	return out
}

// decodeValidatorActions reads entry's per-state routing as
// ValidatorActions.
func decodeValidatorActions(entry config.ConnectionEntry, logger *slog.Logger) map[state.State]config.ValidatorAction {
	out := make(map[state.State]config.ValidatorAction)
	for s, raw := range entry.States() {
		var a config.ValidatorAction
		if err := json.Unmarshal(raw, &a); err != nil {
			logger.Warn("bootstrap: could not decode validator action", "connection", entry.Name, "state", s, "error", err)
			continue
		}
		out[s] = a
	}
	return out
}

// decodeAnalogActions reads entry's per-state routing as AnalogActions.
func decodeAnalogActions(entry config.ConnectionEntry, logger *slog.Logger) map[state.State]config.AnalogAction {
	out := make(map[state.State]config.AnalogAction)
	for s, raw := range entry.States() {
		var a config.AnalogAction
		if err := json.Unmarshal(raw, &a); err != nil {
			logger.Warn("bootstrap: could not decode analog action", "connection", entry.Name, "state", s, "error", err)
			continue
		}
		out[s] = a
	}
	return out
}

// decodeStringActions reads entry's per-state routing as literal strings,
// for stdio:output.
func decodeStringActions(entry config.ConnectionEntry, logger *slog.Logger) map[state.State]string {
	out := make(map[state.State]string)
	for s, raw := range entry.States() {
		var line string
		if err := json.Unmarshal(raw, &line); err != nil {
			logger.Warn("bootstrap: could not decode stdio action", "connection", entry.Name, "state", s, "error", err)
			continue
		}
		out[s] = line
	}
	return out
}

// rawEntries returns the keys of entry's CHECK_BADGE object still as raw
// JSON, for internal:hardcoded_rfids whose "<state>:when" keys live under
// CHECK_BADGE. An entry without CHECK_BADGE yields an empty map.
func rawEntries(entry config.ConnectionEntry) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	checkBadge, ok := entry.States()[state.CheckBadge]
	if !ok {
		return raw, nil
	}
	if err := json.Unmarshal(checkBadge, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
