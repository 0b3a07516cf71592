// Package connection defines the uniform contract every plug-in (input or
// output) implements to participate in the interlock's state machine.
package connection

import "github.com/dallas-makerspace/interlock/message"

// Connection is implemented by every input, output or mixed plug-in.
// Update must return quickly: a Connection that needs to do real work in
// response to a message (an HTTP call, a multi-second blink sequence)
// spawns its own goroutine rather than blocking the caller.
type Connection interface {
	Update(msg message.Message) error
}

// Producer is implemented by Connections that declare run_continuously in
// config: they own a background goroutine that produces Messages (badge
// readers, monitors, the network heartbeat). Run must return when stop is
// closed.
type Producer interface {
	Run(stop <-chan struct{})
}

// Registration is the Interlock's owning record for one configured
// Connection. Lifetime equals the Interlock's lifetime.
type Registration struct {
	Name   string
	Kind   string
	Handle Connection
}
