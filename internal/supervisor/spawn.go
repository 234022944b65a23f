package supervisor

import (
	"errors"
	"os/exec"

	"github.com/PiranhaCodes/ind/internal/channel"
	"github.com/PiranhaCodes/ind/internal/pty"
)

// Spawn starts argv with its standard streams bound to the child side of set
// and then closes those descriptors in the parent.
func Spawn(argv []string, set *channel.Set, env []string) (*Child, error) {
	if len(argv) == 0 {
		return nil, &LaunchError{Command: "", Err: errors.New("empty command")}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if len(env) > 0 {
		cmd.Env = env
	}
	own := bind(cmd, set)

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Command: argv[0], Err: err}
	}
	child := &Child{Pid: cmd.Process.Pid, OwnSession: own, cmd: cmd}
	return child, set.CloseRemote()
}

// bind wires the child's standard streams. A pty on stdin takes precedence
// as controlling terminal over one on stdout. It reports whether the child
// gets a session of its own.
func bind(cmd *exec.Cmd, set *channel.Set) bool {
	switch {
	case set.In.Terminal():
		pty.Promote(cmd, set.In.Pair, 0)
	case set.Out.Terminal():
		pty.Promote(cmd, set.Out.Pair, 1)
	case set.In.Pair != nil:
		pty.Promote(cmd, set.In.Pair, 0)
	case set.Out.Pair != nil:
		pty.Promote(cmd, set.Out.Pair, 1)
	}
	cmd.Stdin = set.In.Remote
	cmd.Stdout = set.Out.Remote
	cmd.Stderr = set.Err.Remote
	return cmd.SysProcAttr != nil && cmd.SysProcAttr.Setsid
}
