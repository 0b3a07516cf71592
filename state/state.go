// Package state defines the closed set of interlock conditions and the
// transient subset that must not overwrite a Connection's remembered status.
package state

// State is one of the interlock's conditions. It is modeled as a string so
// it round-trips through JSON config (routing tables are keyed by state
// name) and logs without a lookup table.
type State string

const (
	PowerUp           State = "POWER_UP"
	Active            State = "ACTIVE"
	InactiveSoon      State = "INACTIVE_SOON"
	Inactive          State = "INACTIVE"
	Error             State = "ERROR"
	ErrorConfig       State = "ERROR_CONFIG"
	ErrorNetwork      State = "ERROR_NETWORK"
	ErrorMaintenance  State = "ERROR_MAINTENANCE"
	TestingNetwork    State = "TESTING_NETWORK"
	CheckBadge        State = "CHECK_BADGE"
	LoginDenied       State = "LOGIN_DENIED"
	// ResetTimer is a pseudo-state: an internal control signal consumed by
	// the Interlock's housekeeping step and never fanned out to Connections.
	ResetTimer State = "RESET_TIMER"
)

// infoOnly holds the transient states that must not overwrite a Connection's
// remembered "last persistent state" (e.g. LcdP018Output.saved_status).
var infoOnly = map[State]bool{
	TestingNetwork: true,
	CheckBadge:     true,
	LoginDenied:    true,
}

// IsInfoOnly reports whether s is a transient, non-persistent state.
func IsInfoOnly(s State) bool {
	return infoOnly[s]
}

// Known reports whether s is one of the closed enumeration's members,
// including the RESET_TIMER pseudo-state.
func Known(s State) bool {
	switch s {
	case PowerUp, Active, InactiveSoon, Inactive, Error, ErrorConfig,
		ErrorNetwork, ErrorMaintenance, TestingNetwork, CheckBadge,
		LoginDenied, ResetTimer:
		return true
	default:
		return false
	}
}
