package pty

import (
	"os/exec"
	"syscall"
)

// Promote makes the child started by cmd the session leader of pair's slave.
// All three standard streams are bound to the slave; the caller rebinds the
// ones that must differ. slot is the child descriptor (0, 1 or 2) that stays
// bound to the slave and becomes the controlling terminal.
//
// A socket-pair Pair cannot be a controlling terminal, so in that case the
// slave is only duplicated onto the standard streams.
func Promote(cmd *exec.Cmd, pair *Pair, slot int) {
	cmd.Stdin = pair.Slave
	cmd.Stdout = pair.Slave
	cmd.Stderr = pair.Slave

	if !pair.Terminal() {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true
	cmd.SysProcAttr.Ctty = slot
}
