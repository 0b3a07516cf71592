package config

import "encoding/json"

// DigitalOp is the operation a DigitalOutput performs when it enters a
// mapped state.
type DigitalOp string

const (
	OpOn    DigitalOp = "ON"
	OpOff   DigitalOp = "OFF"
	OpBlink DigitalOp = "BLINK"
	OpSOS   DigitalOp = "SOS"
)

// DigitalAction is the action descriptor a DigitalOutput's routing table
// maps each state to.
type DigitalAction struct {
	Op      DigitalOp
	Seconds *float64
}

// UnmarshalJSON accepts both the simple form ("ACTIVE": "ON") and the
// detailed form ("ACTIVE": {"output": "ON", "seconds": 3}), matching the
// source's two accepted shapes.
func (a *DigitalAction) UnmarshalJSON(data []byte) error {
	var simple string
	if err := json.Unmarshal(data, &simple); err == nil {
		a.Op = DigitalOp(simple)
		a.Seconds = nil
		return nil
	}
	var detailed struct {
		Output  DigitalOp `json:"output"`
		Seconds *float64  `json:"seconds"`
	}
	if err := json.Unmarshal(data, &detailed); err != nil {
		return err
	}
	a.Op = detailed.Output
	a.Seconds = detailed.Seconds
	return nil
}

// RGB is a backlight color, each channel in [0, 255].
type RGB struct {
	R, G, B uint8
}

// LCDAction is the action descriptor an LcdP018Output's routing table
// maps each state to.
type LCDAction struct {
	Message [2]string `json:"message"`
	Color   RGB        `json:"color"`
	Timeout *float64   `json:"timeout,omitempty"`
}

// UnmarshalJSON decodes the [r,g,b] triple form for Color alongside the
// plain row/timeout fields.
func (a *LCDAction) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message [2]string `json:"message"`
		Color   [3]uint8  `json:"color"`
		Timeout *float64  `json:"timeout,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Message = raw.Message
	a.Color = RGB{R: raw.Color[0], G: raw.Color[1], B: raw.Color[2]}
	a.Timeout = raw.Timeout
	return nil
}

// Edge is the GPIO transition a DigitalMonitor's routing table maps a
// state to.
type Edge string

const (
	EdgeFalling Edge = "FALLING"
	EdgeRising  Edge = "RISING"
)

// AnalogAction is the action descriptor an AnalogMonitor's routing table
// maps each state to: a range or disjunction over the ADC's normalized
// [0,1] reading.
type AnalogAction struct {
	Higher *float64 `json:"higher,omitempty"`
	Lower  *float64 `json:"lower,omitempty"`
}

// Match reports whether value triggers this action. When both bounds are
// present and Higher < Lower, the pair describes a range (value strictly
// between them); otherwise it's a disjunction of either bound being
// crossed.
func (a AnalogAction) Match(value float64) bool {
	if a.Higher != nil && a.Lower != nil && *a.Higher < *a.Lower {
		return value > *a.Higher && value < *a.Lower
	}
	matched := false
	if a.Higher != nil && value > *a.Higher {
		matched = true
	}
	if a.Lower != nil && value < *a.Lower {
		matched = true
	}
	return matched
}

// ValidatorAction is the action descriptor a WebService validator's
// routing table maps each state to: either a bare URL template string, or
// an object carrying the template plus save_reply and "<state>:when"
// match conditions.
type ValidatorAction struct {
	URLTemplate string
	SaveReply   bool
	// Conditions maps a candidate next state to the set of reply fields
	// (and their expected values) that must match for that state to win.
	Conditions map[string]map[string]interface{}
}

func (a *ValidatorAction) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		a.URLTemplate = bare
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Conditions = make(map[string]map[string]interface{})
	for k, v := range raw {
		switch k {
		case "url":
			if err := json.Unmarshal(v, &a.URLTemplate); err != nil {
				return err
			}
		case "save_reply":
			if err := json.Unmarshal(v, &a.SaveReply); err != nil {
				return err
			}
		default:
			// A "<state>:when" condition map.
			var cond map[string]interface{}
			if err := json.Unmarshal(v, &cond); err != nil {
				continue
			}
			a.Conditions[k] = cond
		}
	}
	return nil
}
