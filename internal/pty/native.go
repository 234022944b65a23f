package pty

import (
	"fmt"

	creackpty "github.com/creack/pty"
)

type nativeProvider struct{}

func (nativeProvider) Kind() Kind { return KindNative }

func (nativeProvider) Open() (*Pair, error) {
	master, slave, err := creackpty.Open()
	if err != nil {
		return nil, fmt.Errorf("pty: open: %w", err)
	}
	return &Pair{
		Master: master,
		Slave:  slave,
		Name:   slave.Name(),
		Kind:   KindNative,
	}, nil
}
