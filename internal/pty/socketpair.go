package pty

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// SocketpairName is the Name of every socket-pair Pair.
const SocketpairName = "socketpair"

type socketpairProvider struct{}

func (socketpairProvider) Kind() Kind { return KindSocketpair }

// Open returns a connected stream socket pair. Bytes written to one side are
// read on the other, but there is no line discipline or window size.
func (socketpairProvider) Open() (*Pair, error) {
	syscall.ForkLock.RLock()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err == nil {
		unix.CloseOnExec(fds[0])
		unix.CloseOnExec(fds[1])
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("pty: socketpair: %w", err)
	}

	return &Pair{
		Master: os.NewFile(uintptr(fds[0]), SocketpairName),
		Slave:  os.NewFile(uintptr(fds[1]), SocketpairName),
		Name:   SocketpairName,
		Kind:   KindSocketpair,
	}, nil
}
