package channel

import (
	"errors"
	"os"
)

// Set holds the three child-facing channels. When stdin and stdout share one
// terminal, In and Out share a single pty pair and their descriptors.
type Set struct {
	Out *Channel
	Err *Channel
	In  *Channel

	Shared bool
}

// List returns every channel in a fixed order.
func (s *Set) List() []*Channel {
	return []*Channel{s.Out, s.Err, s.In}
}

// Live returns the channels that are still open.
func (s *Set) Live() []*Channel {
	live := make([]*Channel, 0, 3)
	for _, c := range s.List() {
		if c.open {
			live = append(live, c)
		}
	}
	return live
}

// Count returns the number of open channels.
func (s *Set) Count() int {
	return len(s.Live())
}

// Get returns the channel for a role.
func (s *Set) Get(role Role) *Channel {
	switch role {
	case ChildToOut:
		return s.Out
	case ChildToErr:
		return s.Err
	default:
		return s.In
	}
}

// Retire closes the supervisor side of c. A shared partner is retired with
// it since both sit on the same descriptor.
func (s *Set) Retire(c *Channel) error {
	if !c.open {
		return nil
	}
	c.open = false
	if s.Shared && (c == s.Out || c == s.In) {
		s.Out.open = false
		s.In.open = false
		err := closeFile(&s.Out.Local)
		s.In.Local = nil
		return err
	}
	return closeFile(&c.Local)
}

// CloseRemote closes every child-side descriptor. The parent calls it right
// after the child has started.
func (s *Set) CloseRemote() error {
	var errs []error
	for _, c := range s.List() {
		errs = append(errs, closeFile(&c.Remote))
		if c.Pair != nil {
			c.Pair.Slave = nil
		}
	}
	if s.Shared {
		s.In.Remote = nil
	}
	return errors.Join(errs...)
}

// Close releases every descriptor still held.
func (s *Set) Close() error {
	errs := []error{s.CloseRemote()}
	for _, c := range s.List() {
		errs = append(errs, s.Retire(c))
	}
	return errors.Join(errs...)
}

// closeFile closes *f once and clears it. Shared channels point at the same
// *os.File, so a second close is reported as success.
func closeFile(f **os.File) error {
	if *f == nil {
		return nil
	}
	err := (*f).Close()
	*f = nil
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
