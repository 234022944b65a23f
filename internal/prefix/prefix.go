package prefix

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// ReadSize is the largest read Relay performs. It is kept small so that one
// busy stream cannot hold up the others for long.
const ReadSize = 128

// LineState tells whether the next byte written starts a new logical line.
type LineState int

const (
	// LineEmpty means the next byte begins a new line and needs the prefix.
	LineEmpty LineState = iota
	// LineStarted means the current line already carries its prefix.
	LineStarted
)

func (s LineState) String() string {
	if s == LineStarted {
		return "line-started"
	}
	return "line-empty"
}

// Result reports whether a source descriptor is still usable after Relay.
type Result int

const (
	Continue Result = iota
	Closed
)

func (r Result) String() string {
	if r == Closed {
		return "closed"
	}
	return "continue"
}

// InternalError is a read failure that can only come from a programming error
// (bad descriptor, bad buffer). The caller must abort.
type InternalError struct {
	Op  string
	Fd  int
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s fd %d: %v", e.Op, e.Fd, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

// Classify maps a read error on fd to a Result. EAGAIN and EINTR leave the
// descriptor open, the internal classes yield an *InternalError, and anything
// else retires the descriptor.
func Classify(op string, fd int, err error) (Result, error) {
	switch {
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
		return Continue, nil
	case errors.Is(err, unix.EFAULT), errors.Is(err, unix.EINVAL),
		errors.Is(err, unix.EBADF), errors.Is(err, unix.EISDIR):
		return Closed, &InternalError{Op: op, Fd: fd, Err: err}
	default:
		return Closed, fmt.Errorf("%s fd %d: %w", op, fd, err)
	}
}

// Relay performs one bounded read from src and writes the rewritten bytes to
// dst. A Closed result may come with an error describing why; an error that
// is an *InternalError must end the process.
func Relay(src, dst int, pre, post []byte, state *LineState) (Result, error) {
	var buf [ReadSize]byte

	n, err := unix.Read(src, buf[:])
	if err != nil {
		return Classify("read", src, err)
	}
	if n == 0 {
		return Closed, nil
	}

	if err := Transform(FdWriter(dst), buf[:n], pre, post, state); err != nil {
		return Closed, fmt.Errorf("write fd %d: %w", dst, err)
	}
	return Continue, nil
}

// Transform writes data to w with pre inserted at every line start and post
// before every terminator. state is updated to reflect where data ended.
func Transform(w io.Writer, data, pre, post []byte, state *LineState) error {
	for {
		i := bytes.IndexAny(data, "\r\n")
		if i < 0 {
			break
		}
		if *state == LineEmpty {
			if err := write(w, pre); err != nil {
				return err
			}
			*state = LineStarted
		}
		if err := write(w, data[:i]); err != nil {
			return err
		}
		if err := write(w, post); err != nil {
			return err
		}
		if err := write(w, data[i:i+1]); err != nil {
			return err
		}
		*state = LineEmpty
		data = data[i+1:]
	}

	if len(data) == 0 {
		return nil
	}
	if *state == LineEmpty {
		if err := write(w, pre); err != nil {
			return err
		}
	}
	*state = LineStarted
	return write(w, data)
}

func write(w io.Writer, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	_, err := w.Write(p)
	return err
}
