// Package channel builds the descriptor pairs between the supervisor and its
// child: a pseudo-terminal for each standard stream attached to a terminal,
// a plain pipe otherwise, and always a pipe for stderr.
package channel

import (
	"os"

	"github.com/PiranhaCodes/ind/internal/prefix"
	"github.com/PiranhaCodes/ind/internal/pty"
)

// Role names the direction a channel carries.
type Role int

const (
	ChildToOut Role = iota
	ChildToErr
	InToChild
)

func (r Role) String() string {
	switch r {
	case ChildToOut:
		return "child-to-out"
	case ChildToErr:
		return "child-to-err"
	case InToChild:
		return "in-to-child"
	default:
		return "unknown"
	}
}

// Transport is the kind of descriptor pair behind a channel.
type Transport int

const (
	Pipe Transport = iota
	Pty
)

func (t Transport) String() string {
	if t == Pty {
		return "pty"
	}
	return "pipe"
}

// Channel is one direction of I/O between the supervisor and the child.
type Channel struct {
	Role Role

	// Local is the supervisor's end, Remote the child's end.
	Local  *os.File
	Remote *os.File

	// Pair is set for pty transport.
	Pair *pty.Pair

	// Real is the supervisor's own standard stream this channel serves.
	Real *os.File

	// State is the prefixing state of output read from Local.
	State prefix.LineState

	open bool
}

// Transport reports the kind of descriptor pair.
func (c *Channel) Transport() Transport {
	if c.Pair != nil {
		return Pty
	}
	return Pipe
}

// Terminal reports whether the channel is backed by a terminal-capable pair.
func (c *Channel) Terminal() bool {
	return c.Pair != nil && c.Pair.Terminal()
}

// Open reports whether the channel is still live.
func (c *Channel) Open() bool {
	return c.open
}

// Fd returns the supervisor-side descriptor, or -1 once retired.
func (c *Channel) Fd() int {
	if !c.open || c.Local == nil {
		return -1
	}
	return int(c.Local.Fd())
}
