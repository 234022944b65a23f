package pty

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// ErrExhausted is returned when every legacy pty is in use.
var ErrExhausted = errors.New("pty: no free legacy pty")

const (
	legacyBanks = "pqrstuvwxyzabcde"
	legacyUnits = "0123456789abcdef"
)

type legacyProvider struct{}

func (legacyProvider) Kind() Kind { return KindLegacy }

// Open scans /dev/ptyXY for a free master and opens the matching /dev/ttyXY.
func (legacyProvider) Open() (*Pair, error) {
	for _, bank := range legacyBanks {
		for _, unit := range legacyUnits {
			suffix := string(bank) + string(unit)
			masterName := "/dev/pty" + suffix

			master, err := os.OpenFile(masterName, os.O_RDWR|syscall.O_NOCTTY, 0)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil, ErrExhausted
				}
				continue
			}

			slaveName := "/dev/tty" + suffix
			slave, err := os.OpenFile(slaveName, os.O_RDWR|syscall.O_NOCTTY, 0)
			if err != nil {
				master.Close()
				return nil, fmt.Errorf("pty: open %s: %w", slaveName, err)
			}

			return &Pair{
				Master: master,
				Slave:  slave,
				Name:   slaveName,
				Kind:   KindLegacy,
			}, nil
		}
	}
	return nil, ErrExhausted
}
