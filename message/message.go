// Package message defines the unit of the interlock's event queue.
package message

import "github.com/dallas-makerspace/interlock/state"

// Message is the unit carried by the interlock's single event queue. From
// is diagnostic only; BadgeID is set only for state.CheckBadge. Extra
// carries arbitrary additional context (e.g. a monitor's raw reading)
// forwarded verbatim to the WebService validator's URL templating.
type Message struct {
	State   state.State
	From    string
	BadgeID string
	Extra   map[string]string
}

// New builds a Message with the given state and origin.
func New(s state.State, from string) Message {
	return Message{State: s, From: from}
}

// WithBadge returns a copy of m carrying the given badge ID.
func (m Message) WithBadge(badgeID string) Message {
	m.BadgeID = badgeID
	return m
}

// WithExtra returns a copy of m with key set in its Extra map.
func (m Message) WithExtra(key, value string) Message {
	extra := make(map[string]string, len(m.Extra)+1)
	for k, v := range m.Extra {
		extra[k] = v
	}
	extra[key] = value
	m.Extra = extra
	return m
}

// Params flattens the message into a string map suitable for URL template
// substitution: state, from, badge_id (if set) and all Extra fields.
func (m Message) Params() map[string]string {
	p := make(map[string]string, len(m.Extra)+3)
	for k, v := range m.Extra {
		p[k] = v
	}
	p["state"] = string(m.State)
	p["from"] = m.From
	if m.BadgeID != "" {
		p["badge_id"] = m.BadgeID
	}
	return p
}
