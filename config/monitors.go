package config

import "github.com/dallas-makerspace/interlock/state"

// DigitalMonitorSettings is digital:monitor's entry shape: a GPIO pin
// number plus the FALLING/RISING edge keys, which are not interlock
// states and so fall outside ConnectionEntry.States.
type DigitalMonitorSettings struct {
	Pin     int          `json:"pin"`
	Falling *state.State `json:"FALLING,omitempty"`
	Rising  *state.State `json:"RISING,omitempty"`
}

// AnalogMonitorSettings is analog:monitor's non-state settings; its
// per-state higher/lower routing is read through ConnectionEntry.States.
type AnalogMonitorSettings struct {
	Pin int `json:"pin"`
}

// DigitalOutputSettings is digital:output's non-state settings.
type DigitalOutputSettings struct {
	Pin int    `json:"pin"`
	On  string `json:"on,omitempty"` // "HIGH" (default) or "LOW"
}

// LCDSettings is lcd_p018:output's non-state settings: which I2C bus to
// open the controller on, for systems exposing more than one.
type LCDSettings struct {
	I2CBus string `json:"i2c_bus,omitempty"`
}

// SerialBadgeReaderSettings is serial:badge_reader's line-level transport
// settings (device, baud). The shared badge decoding settings are decoded
// separately, into badgereader.Config.
type SerialBadgeReaderSettings struct {
	Device string `json:"device"`
	Baud   int    `json:"baud"`
}

// InputEventBadgeReaderSettings is input_event:badge_reader's non-state
// settings: the USB HID device's vendor/product ID.
type InputEventBadgeReaderSettings struct {
	Vendor  uint16 `json:"vendor"`
	Product uint16 `json:"product"`
}
