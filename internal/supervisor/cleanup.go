package supervisor

import (
	"go.uber.org/zap"
)

// restore puts the terminal back in its original mode. Failure is reported
// and otherwise ignored.
func (s *Supervisor) restore() {
	if err := s.snap.Restore(); err != nil {
		s.log.Warn("restore terminal", zap.Error(err))
	}
}

// cleanup restores the terminal and releases every descriptor still held.
// Every path out of Run goes through it once the child has been started.
func (s *Supervisor) cleanup() {
	s.restore()
	if s.set == nil {
		return
	}
	if err := s.set.Close(); err != nil {
		s.log.Debug("close channels", zap.Error(err))
	}
}
