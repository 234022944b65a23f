package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Exit statuses that do not come from the child itself.
const (
	ExitFailure = 1
	ExitLaunch  = 127
)

// terminateGrace is how long a child asked to stop gets before it is killed.
const terminateGrace = 2 * time.Second

// LaunchError reports that the command could not be started at all.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Child is the running command.
type Child struct {
	Pid int

	// OwnSession is set when the child leads a new session on a pty and so
	// no longer receives signals aimed at our process group.
	OwnSession bool

	cmd *exec.Cmd
}

// Signal delivers sig to the child.
func (c *Child) Signal(sig os.Signal) error {
	return c.cmd.Process.Signal(sig)
}

// Wait reaps the child and maps its termination to an exit status: the exit
// code when it exited, 128 plus the signal number when it was killed.
func (c *Child) Wait() (int, error) {
	err := c.cmd.Wait()
	st := c.cmd.ProcessState
	if st == nil {
		return ExitFailure, fmt.Errorf("wait: %w", err)
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return ExitFailure, fmt.Errorf("wait: %w", err)
	}
	if ws, ok := st.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	return st.ExitCode(), nil
}

// Terminate stops a child the supervisor is abandoning. The child gets
// SIGTERM, then SIGKILL if it is still running after grace, and is reaped
// either way. The returned status is what Wait would report.
func (c *Child) Terminate(grace time.Duration) int {
	done := make(chan int, 1)
	go func() {
		status, _ := c.Wait()
		done <- status
	}()

	c.Signal(syscall.SIGTERM)
	select {
	case status := <-done:
		return status
	case <-time.After(grace):
	}
	c.cmd.Process.Kill()
	return <-done
}
