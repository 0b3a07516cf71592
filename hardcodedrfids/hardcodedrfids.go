// Package hardcodedrfids implements the internal:hardcoded_rfids
// validator: a static badge-id → resulting-state lookup table, flattened
// once at construction from the config's CHECK_BADGE routing entry.
package hardcodedrfids

import (
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/queue"
	"github.com/dallas-makerspace/interlock/state"
)

const defaultKey = "default"

// HardcodedRFIDs consumes CHECK_BADGE only: it looks badge_id up in a
// static map built at construction time and enqueues the mapped state, or
// no-ops if nothing matches.
type HardcodedRFIDs struct {
	name    string
	queue   *queue.Queue
	byBadge map[string]state.State
}

// New flattens entries — a map from "<state>:when" to a list of badge IDs
// (the literal string "default" is allowed in place of a badge ID) — into
// a badge → resulting-state lookup. Duplicate bindings keep the first one
// seen and log a warning.
func New(name string, entries map[string]json.RawMessage, q *queue.Queue, logger *slog.Logger) *HardcodedRFIDs {
	if logger == nil {
		logger = slog.Default()
	}
	h := &HardcodedRFIDs{name: name, queue: q, byBadge: make(map[string]state.State)}

	// Config keys are decoded from a JSON object, whose key order is not
	// preserved; iterate in a fixed, sorted order so "keep the first
	// binding" resolves the same way on every run.
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := entries[key]
		resultState, ok := parseWhenKey(key)
		if !ok {
			continue
		}
		var badges []string
		if err := json.Unmarshal(raw, &badges); err != nil {
			logger.Warn("hardcoded_rfids: could not parse badge list", "name", name, "key", key, "error", err)
			continue
		}
		for _, badge := range badges {
			if existing, ok := h.byBadge[badge]; ok {
				logger.Warn("hardcoded_rfids: duplicate badge binding, keeping first",
					"name", name, "badge", badge, "existing_state", existing, "ignored_state", resultState)
				continue
			}
			h.byBadge[badge] = resultState
		}
	}
	return h
}

// parseWhenKey splits a "<state>:when" key into its State.
func parseWhenKey(key string) (state.State, bool) {
	const suffix = ":when"
	if len(key) <= len(suffix) || key[len(key)-len(suffix):] != suffix {
		return "", false
	}
	return state.State(key[:len(key)-len(suffix)]), true
}

// Update resolves CHECK_BADGE messages by badge_id, falling back to the
// "default" binding, and enqueues the resolved state if one was found.
func (h *HardcodedRFIDs) Update(msg message.Message) error {
	if msg.State != state.CheckBadge {
		return nil
	}
	resultState, ok := h.byBadge[msg.BadgeID]
	if !ok {
		resultState, ok = h.byBadge[defaultKey]
	}
	if !ok {
		return nil
	}
	h.queue.Enqueue(message.New(resultState, "HardcodedRFIDs"))
	return nil
}
