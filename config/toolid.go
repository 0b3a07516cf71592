package config

import (
	"fmt"
	"net"

	"github.com/denisbrodbeck/machineid"
)

// DeriveToolID returns a stable identifier for this device when the
// configuration doesn't set tool_id explicitly: the device's MAC address
// rendered as a lowercase hexadecimal string with a leading "0x" (Go's
// %x verb never appends a trailing type sigil, so there's nothing further
// to strip).
//
// machineid.ID is consulted only as a last resort, for hosts with no
// usable hardware network interface (e.g. a development container) where
// the source's MAC-address scheme has nothing to read.
func DeriveToolID() (string, error) {
	if mac, err := firstHardwareMAC(); err == nil {
		return fmt.Sprintf("0x%x", mac), nil
	}
	id, err := machineid.ID()
	if err != nil {
		return "", fmt.Errorf("config: derive tool_id: %w", err)
	}
	return "0x" + id, nil
}

// firstHardwareMAC returns the integer value of the first non-loopback
// interface's MAC address found, in the iteration order net.Interfaces
// returns.
func firstHardwareMAC() (uint64, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return 0, err
	}
	for _, iface := range ifaces {
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		var v uint64
		for _, b := range iface.HardwareAddr {
			v = v<<8 | uint64(b)
		}
		return v, nil
	}
	return 0, fmt.Errorf("config: no hardware network interface found")
}
