// Package stdio implements StdioOutput: the simplest output Connection,
// printing a literal string for each mapped state.
package stdio

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/state"
)

// StdioOutput writes a per-state literal string to w (typically os.Stdout).
type StdioOutput struct {
	name   string
	w      io.Writer
	routes map[state.State]string
	logger *slog.Logger
}

// New builds a StdioOutput and immediately self-inits by running
// Update(POWER_UP), so a POWER_UP line, if one is mapped, is printed at
// construction.
func New(name string, w io.Writer, routes map[state.State]string, logger *slog.Logger) *StdioOutput {
	if logger == nil {
		logger = slog.Default()
	}
	s := &StdioOutput{name: name, w: w, routes: routes, logger: logger}
	s.Update(message.New(state.PowerUp, "startup"))
	return s
}

// Update prints the literal string mapped for msg.State, if any.
func (s *StdioOutput) Update(msg message.Message) error {
	line, ok := s.routes[msg.State]
	if !ok {
		return nil
	}
	if _, err := fmt.Fprintln(s.w, line); err != nil {
		s.logger.Warn("stdio_output: write failed", "name", s.name, "error", err)
		return err
	}
	return nil
}
