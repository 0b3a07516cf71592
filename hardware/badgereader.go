package hardware

import (
	"fmt"

	"github.com/holoplot/go-evdev"
)

// FindBadgeReader opens the input_event device whose vendor/product IDs
// match, ported near-verbatim from the source's findBadgeReader.
func FindBadgeReader(vendor, product uint16) (*evdev.InputDevice, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	for _, d := range paths {
		device, err := evdev.Open(d.Path)
		if err != nil {
			return nil, err
		}
		id, err := device.InputID()
		if err != nil {
			return nil, err
		}
		if id.Vendor == vendor && id.Product == product {
			return device, nil
		}
	}
	return nil, fmt.Errorf("hardware: no badge reader found amongst %d devices with ID %d:%d", len(paths), vendor, product)
}
