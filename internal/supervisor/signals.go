package supervisor

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// handledSignals are turned into loop events.
var handledSignals = []os.Signal{
	syscall.SIGWINCH,
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}

// signalPipe turns signal delivery into readiness on a descriptor so the
// event loop can wait for signals and data in the same poll.
type signalPipe struct {
	r, w    *os.File
	notify  chan os.Signal
	pending chan os.Signal
	done    chan struct{}
}

func newSignalPipe() (*signalPipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("signal pipe: %w", err)
	}
	p := &signalPipe{
		r:       r,
		w:       w,
		notify:  make(chan os.Signal, 8),
		pending: make(chan os.Signal, 32),
		done:    make(chan struct{}),
	}
	signal.Notify(p.notify, handledSignals...)
	go p.forward()
	return p, nil
}

func (p *signalPipe) forward() {
	for {
		select {
		case sig := <-p.notify:
			select {
			case p.pending <- sig:
			default:
			}
			p.w.Write([]byte{0})
		case <-p.done:
			return
		}
	}
}

// Fd is the descriptor that becomes readable when a signal is pending.
func (p *signalPipe) Fd() int {
	return int(p.r.Fd())
}

// Drain consumes the wakeup bytes and returns the pending signals.
func (p *signalPipe) Drain() []os.Signal {
	var buf [64]byte
	p.r.Read(buf[:])

	var sigs []os.Signal
	for {
		select {
		case sig := <-p.pending:
			sigs = append(sigs, sig)
		default:
			return sigs
		}
	}
}

func (p *signalPipe) Stop() {
	signal.Stop(p.notify)
	close(p.done)
	p.w.Close()
	p.r.Close()
}
