package pty

import (
	"errors"
	"os"

	creackpty "github.com/creack/pty"
)

// ErrNotTerminal is returned by terminal operations on a socket-pair Pair.
var ErrNotTerminal = errors.New("pty: pair has no terminal semantics")

// Kind identifies the provider that produced a Pair.
type Kind int

const (
	KindNative Kind = iota
	KindLegacy
	KindSocketpair
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindLegacy:
		return "legacy"
	case KindSocketpair:
		return "socketpair"
	default:
		return "unknown"
	}
}

// Pair is an allocated master/slave pair. Name is the slave device path.
type Pair struct {
	Master *os.File
	Slave  *os.File
	Name   string
	Kind   Kind
}

// Terminal reports whether the pair supports terminal ioctls.
func (p *Pair) Terminal() bool {
	return p.Kind != KindSocketpair
}

// Resize sets the window size seen by the slave side.
func (p *Pair) Resize(ws *creackpty.Winsize) error {
	if !p.Terminal() {
		return ErrNotTerminal
	}
	return creackpty.Setsize(p.Master, ws)
}

// Size returns the window size seen by the slave side.
func (p *Pair) Size() (*creackpty.Winsize, error) {
	if !p.Terminal() {
		return nil, ErrNotTerminal
	}
	return creackpty.GetsizeFull(p.Master)
}

// CloseSlave closes the slave side only. The parent calls it once the child
// holds its own copy.
func (p *Pair) CloseSlave() error {
	if p.Slave == nil {
		return nil
	}
	err := p.Slave.Close()
	p.Slave = nil
	return err
}

// Close closes both sides.
func (p *Pair) Close() error {
	err := p.CloseSlave()
	if p.Master != nil {
		if cerr := p.Master.Close(); err == nil {
			err = cerr
		}
		p.Master = nil
	}
	return err
}

// Provider allocates pairs.
type Provider interface {
	Open() (*Pair, error)
	Kind() Kind
}

// Probe holds what Detect looks at. Tests swap Stat to simulate platforms.
type Probe struct {
	Stat func(name string) (os.FileInfo, error)
}

// DefaultProbe inspects the real filesystem.
func DefaultProbe() Probe {
	return Probe{Stat: os.Stat}
}

const (
	nativeDevice = "/dev/ptmx"
	legacyDevice = "/dev/ptyp0"
)

// Detect chooses the first available provider: native, then legacy, then
// the socket-pair emulation, which is always available.
func Detect(probe Probe) Provider {
	stat := probe.Stat
	if stat == nil {
		stat = os.Stat
	}
	if _, err := stat(nativeDevice); err == nil {
		return nativeProvider{}
	}
	if _, err := stat(legacyDevice); err == nil {
		return legacyProvider{}
	}
	return socketpairProvider{}
}
