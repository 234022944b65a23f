// Package supervisor runs one child command and relays its standard streams,
// prefixing every output line, until the child's side of each stream is done.
//
// All relaying happens on a single goroutine blocked in poll(2) over the
// live descriptors. Signals reach that goroutine through a self-pipe.
package supervisor

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/PiranhaCodes/ind/internal/channel"
	"github.com/PiranhaCodes/ind/internal/format"
	"github.com/PiranhaCodes/ind/internal/prefix"
	"github.com/PiranhaCodes/ind/internal/pty"
)

// ErrStdinRelay reports a failed write of stdin data to the child.
var ErrStdinRelay = errors.New("relay stdin to child")

// Config describes one supervised run.
type Config struct {
	Argv []string
	Env  []string

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	OutPrefix  format.Template
	OutPostfix format.Template
	ErrPrefix  format.Template
	ErrPostfix format.Template

	Provider pty.Provider
	Logger   *zap.Logger
}

// Supervisor owns every descriptor, the terminal snapshot and the child for
// the duration of Run.
type Supervisor struct {
	cfg Config
	log *zap.Logger

	set   *channel.Set
	child *Child
	snap  *Snapshot
	sig   *signalPipe

	stdinFd   int
	stdinTTY  bool
	stdinOpen bool
	stdoutFd  int
	stderrFd  int
}

// New returns a Supervisor for cfg. Nil streams default to the process's own.
func New(cfg Config) *Supervisor {
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Provider == nil {
		cfg.Provider = pty.Detect(pty.DefaultProbe())
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Supervisor{cfg: cfg, log: log.Named("supervisor")}
}

// Run starts the child, relays until every stream is done and returns the
// exit status to use for the process. A non-nil error has already been
// accounted for in the status.
func (s *Supervisor) Run() (int, error) {
	s.stdinFd = int(s.cfg.Stdin.Fd())
	s.stdoutFd = int(s.cfg.Stdout.Fd())
	s.stderrFd = int(s.cfg.Stderr.Fd())
	s.stdinTTY = term.IsTerminal(s.stdinFd)
	s.stdinOpen = true

	sig, err := newSignalPipe()
	if err != nil {
		return ExitFailure, err
	}
	s.sig = sig
	defer sig.Stop()

	set, err := channel.Setup(channel.Options{
		Stdin:    s.cfg.Stdin,
		Stdout:   s.cfg.Stdout,
		Stderr:   s.cfg.Stderr,
		Provider: s.cfg.Provider,
		Width:    s.width(),
		Logger:   s.log,
	})
	if err != nil {
		return ExitFailure, fmt.Errorf("setup channels: %w", err)
	}
	s.set = set

	child, err := Spawn(s.cfg.Argv, set, s.cfg.Env)
	if child == nil {
		set.Close()
		var launchErr *LaunchError
		if errors.As(err, &launchErr) {
			return ExitLaunch, err
		}
		return ExitFailure, err
	}
	if err != nil {
		s.log.Debug("close child descriptors", zap.Error(err))
	}
	s.child = child
	s.log.Info("child started", zap.Int("pid", child.Pid), zap.Strings("argv", s.cfg.Argv))

	snap, err := Capture(s.cfg.Stdin)
	if err != nil {
		s.log.Warn("terminal left in cooked mode", zap.Error(err))
	}
	s.snap = snap

	if err := s.loop(); err != nil {
		s.cleanup()
		status := child.Terminate(terminateGrace)
		s.log.Info("child stopped", zap.Int("pid", child.Pid), zap.Int("status", status))
		return ExitFailure, err
	}

	s.cleanup()
	status, err := child.Wait()
	s.log.Info("child exited", zap.Int("pid", child.Pid), zap.Int("status", status))
	return status, err
}

// done is the termination predicate. A terminal on stdin never reaches EOF
// by itself, so it is only waited for when it is not a terminal.
func (s *Supervisor) done() bool {
	if s.set.Count() > 0 {
		return false
	}
	return s.stdinTTY || !s.stdinOpen
}

func (s *Supervisor) loop() error {
	for !s.done() {
		readable := s.readable()
		fds := make([]unix.PollFd, 0, len(readable)+2)
		for _, c := range readable {
			fds = append(fds, pollIn(c.Fd()))
		}
		forwarding := s.stdinOpen && (s.set.In.Open() || !s.stdinTTY)
		if forwarding {
			fds = append(fds, pollIn(s.stdinFd))
		}
		fds = append(fds, pollIn(s.sig.Fd()))

		if _, err := unix.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}

		if fds[len(fds)-1].Revents != 0 {
			s.handleSignals()
		}
		for i, c := range readable {
			if !c.Open() || fds[i].Revents == 0 {
				continue
			}
			if err := s.service(c); err != nil {
				return err
			}
		}
		if forwarding && s.stdinOpen && fds[len(readable)].Revents != 0 {
			if err := s.forwardStdin(); err != nil {
				return err
			}
		}
	}
	return nil
}

// pollIn watches fd for input. Hangup and error conditions are reported
// regardless and surface as a read that ends the stream.
func pollIn(fd int) unix.PollFd {
	return unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
}

// readable lists the channels whose supervisor side is read from. A pipe on
// stdin is write-only, and a pty shared with stdout is read through Out.
func (s *Supervisor) readable() []*channel.Channel {
	out := make([]*channel.Channel, 0, 3)
	for _, c := range s.set.Live() {
		if c.Role == channel.InToChild && (c.Pair == nil || s.set.Shared) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// service relays one read from c. Output of a pty on stdin alone is the
// child's terminal echo and goes to stdout.
func (s *Supervisor) service(c *channel.Channel) error {
	if c.Terminal() && !term.IsTerminal(int(c.Real.Fd())) {
		s.log.Debug("controlling side is no longer a terminal", zap.Stringer("channel", c.Role))
		s.retire(c, nil)
		return nil
	}

	dst, pre, post := s.stdoutFd, s.cfg.OutPrefix, s.cfg.OutPostfix
	if c.Role == channel.ChildToErr {
		dst, pre, post = s.stderrFd, s.cfg.ErrPrefix, s.cfg.ErrPostfix
	}

	res, err := prefix.Relay(c.Fd(), dst, pre.Render(), post.Render(), &c.State)
	var internal *prefix.InternalError
	if errors.As(err, &internal) {
		return fmt.Errorf("%s: %w", c.Role, err)
	}
	if res == prefix.Closed {
		s.retire(c, err)
	}
	return nil
}

// forwardStdin copies one read of the real stdin to the child unchanged.
func (s *Supervisor) forwardStdin() error {
	var buf [prefix.ReadSize]byte

	n, err := unix.Read(s.stdinFd, buf[:])
	if err != nil {
		res, cerr := prefix.Classify("read stdin", s.stdinFd, err)
		var internal *prefix.InternalError
		if errors.As(cerr, &internal) {
			return cerr
		}
		if res == prefix.Closed {
			s.closeStdin(cerr)
		}
		return nil
	}
	if n == 0 {
		s.closeStdin(nil)
		return nil
	}

	in := s.set.In
	if !in.Open() {
		return nil
	}
	if _, err := prefix.WriteFull(in.Fd(), buf[:n]); err != nil {
		s.restore()
		return fmt.Errorf("%w: %w", ErrStdinRelay, err)
	}
	return nil
}

// closeStdin stops reading stdin. A pipe to the child is closed so the child
// sees end of input.
func (s *Supervisor) closeStdin(err error) {
	s.stdinOpen = false
	s.log.Debug("stdin closed", zap.Error(err))
	if in := s.set.In; in.Open() && in.Pair == nil {
		s.retire(in, nil)
	}
}

func (s *Supervisor) retire(c *channel.Channel, err error) {
	s.log.Debug("channel retired", zap.Stringer("channel", c.Role), zap.Error(err))
	if cerr := s.set.Retire(c); cerr != nil {
		s.log.Debug("close channel", zap.Stringer("channel", c.Role), zap.Error(cerr))
	}
}

func (s *Supervisor) handleSignals() {
	for _, sig := range s.sig.Drain() {
		if sig == syscall.SIGWINCH {
			if err := s.set.Resize(s.width()); err != nil {
				s.log.Debug("resize", zap.Error(err))
			}
			continue
		}
		if !s.child.OwnSession && (sig == syscall.SIGINT || sig == syscall.SIGQUIT) {
			// The child shares our process group and got the keyboard signal itself.
			continue
		}
		s.log.Info("forwarding signal", zap.Stringer("signal", sig))
		if err := s.child.Signal(sig); err != nil {
			s.log.Debug("signal child", zap.Stringer("signal", sig), zap.Error(err))
		}
	}
}

// width is the display width taken by the stdout prefix and postfix as they
// would render now.
func (s *Supervisor) width() int {
	return channel.Width(s.cfg.OutPrefix.Render(), s.cfg.OutPostfix.Render())
}
