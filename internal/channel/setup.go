package channel

import (
	"errors"
	"fmt"
	"os"

	creackpty "github.com/creack/pty"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/PiranhaCodes/ind/internal/pty"
)

// Options configures Setup.
type Options struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	Provider pty.Provider

	// Width is the number of display columns taken by the stdout prefix and
	// postfix. Terminal pairs are made that much narrower than the real one.
	Width int

	Logger *zap.Logger
}

// Width returns the display width of a rendered prefix and postfix.
func Width(prefix, postfix []byte) int {
	return runewidth.StringWidth(string(prefix)) + runewidth.StringWidth(string(postfix))
}

// Columns shrinks a terminal width by the columns taken by decoration. The
// result never drops below one column; an unknown width stays unknown.
func Columns(cols uint16, width int) uint16 {
	if cols == 0 {
		return 0
	}
	if int(cols) <= width {
		return 1
	}
	return cols - uint16(width)
}

// Setup allocates the channels for stdin, stdout and stderr.
func Setup(opts Options) (*Set, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	inTTY := term.IsTerminal(int(opts.Stdin.Fd()))
	outTTY := term.IsTerminal(int(opts.Stdout.Fd()))

	set := &Set{}
	fail := func(err error) (*Set, error) {
		for _, c := range set.List() {
			if c != nil {
				closeFile(&c.Local)
				closeFile(&c.Remote)
			}
		}
		return nil, err
	}

	if inTTY && outTTY && SameTerminal(opts.Stdin, opts.Stdout) {
		pair, err := openTerminal(opts.Provider, opts.Stdout, opts.Width, log)
		if err != nil {
			return fail(fmt.Errorf("stdout: %w", err))
		}
		set.Shared = true
		set.Out = ptyChannel(ChildToOut, pair, opts.Stdout)
		set.In = ptyChannel(InToChild, pair, opts.Stdin)
	} else {
		var err error
		if outTTY {
			pair, perr := openTerminal(opts.Provider, opts.Stdout, opts.Width, log)
			if perr != nil {
				return fail(fmt.Errorf("stdout: %w", perr))
			}
			set.Out = ptyChannel(ChildToOut, pair, opts.Stdout)
		} else if set.Out, err = outputPipe(ChildToOut, opts.Stdout); err != nil {
			return fail(fmt.Errorf("stdout: %w", err))
		}

		if inTTY {
			pair, perr := openTerminal(opts.Provider, opts.Stdin, opts.Width, log)
			if perr != nil {
				return fail(fmt.Errorf("stdin: %w", perr))
			}
			set.In = ptyChannel(InToChild, pair, opts.Stdin)
		} else if set.In, err = inputPipe(opts.Stdin); err != nil {
			return fail(fmt.Errorf("stdin: %w", err))
		}
	}

	var err error
	if set.Err, err = outputPipe(ChildToErr, opts.Stderr); err != nil {
		return fail(fmt.Errorf("stderr: %w", err))
	}

	for _, c := range set.List() {
		log.Debug("channel ready",
			zap.Stringer("channel", c.Role),
			zap.Stringer("transport", c.Transport()),
			zap.Int("fd", c.Fd()),
		)
	}
	return set, nil
}

// Resize propagates the real terminal geometry, minus width columns, to every
// terminal-capable pair in the set.
func (s *Set) Resize(width int) error {
	var errs []error
	for _, c := range s.Live() {
		if !c.Terminal() || (s.Shared && c == s.In) {
			continue
		}
		errs = append(errs, fitSize(c.Pair, c.Real, width))
	}
	return errors.Join(errs...)
}

func openTerminal(provider pty.Provider, real *os.File, width int, log *zap.Logger) (*pty.Pair, error) {
	pair, err := provider.Open()
	if err != nil {
		return nil, err
	}
	if !pair.Terminal() {
		log.Debug("pty provider has no terminal semantics", zap.Stringer("kind", pair.Kind))
		return pair, nil
	}

	if state, err := term.GetState(int(real.Fd())); err == nil {
		if err := term.Restore(int(pair.Slave.Fd()), state); err != nil {
			log.Debug("copy terminal settings", zap.String("tty", pair.Name), zap.Error(err))
		}
	}
	if err := fitSize(pair, real, width); err != nil {
		log.Debug("size pty", zap.String("tty", pair.Name), zap.Error(err))
	}
	return pair, nil
}

func fitSize(pair *pty.Pair, real *os.File, width int) error {
	ws, err := creackpty.GetsizeFull(real)
	if err != nil {
		return fmt.Errorf("get size of %s: %w", real.Name(), err)
	}
	ws.Cols = Columns(ws.Cols, width)
	return pair.Resize(ws)
}

func ptyChannel(role Role, pair *pty.Pair, real *os.File) *Channel {
	return &Channel{
		Role:   role,
		Local:  pair.Master,
		Remote: pair.Slave,
		Pair:   pair,
		Real:   real,
		open:   true,
	}
}

// outputPipe carries child output: the child writes, the supervisor reads.
func outputPipe(role Role, real *os.File) (*Channel, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}
	return &Channel{Role: role, Local: r, Remote: w, Real: real, open: true}, nil
}

// inputPipe carries stdin: the supervisor writes, the child reads.
func inputPipe(real *os.File) (*Channel, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}
	return &Channel{Role: InToChild, Local: w, Remote: r, Real: real, open: true}, nil
}

// SameTerminal reports whether a and b refer to the same terminal device.
func SameTerminal(a, b *os.File) bool {
	na, nb := TerminalName(a), TerminalName(b)
	return na != "" && na == nb
}

// TerminalName returns the device name behind f, falling back to its device
// number where the name cannot be resolved.
func TerminalName(f *os.File) string {
	fd := int(f.Fd())
	if name, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", fd)); err == nil {
		return name
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return ""
	}
	return fmt.Sprintf("rdev:%d", st.Rdev)
}
