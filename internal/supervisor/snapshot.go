package supervisor

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Snapshot holds the original attributes of a terminal switched to raw mode.
// Restore puts them back exactly once.
type Snapshot struct {
	fd       int
	state    *term.State
	restored bool
}

// Capture switches f to raw mode and returns the previous attributes. It
// returns nil and no error when f is not a terminal.
func Capture(f *os.File) (*Snapshot, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}
	return &Snapshot{fd: fd, state: state}, nil
}

// Restore reapplies the saved attributes. Later calls do nothing, as does a
// call on a nil Snapshot.
func (s *Snapshot) Restore() error {
	if s == nil || s.restored {
		return nil
	}
	s.restored = true
	if err := term.Restore(s.fd, s.state); err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	return nil
}
