package prefix

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"
)

// WriteFull writes all of p to fd, retrying on EINTR and short writes. It
// stops at the first other error.
func WriteFull(fd int, p []byte) (int, error) {
	off := 0
	for off < len(p) {
		n, err := unix.Write(fd, p[off:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return off, err
		}
		if n == 0 {
			return off, io.ErrShortWrite
		}
		off += n
	}
	return off, nil
}

// FdWriter is an io.Writer over a raw descriptor using WriteFull.
type FdWriter int

func (w FdWriter) Write(p []byte) (int, error) {
	return WriteFull(int(w), p)
}
