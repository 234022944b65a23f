package channel

import (
	"io"
	"os"
	"testing"

	creackpty "github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PiranhaCodes/ind/internal/pty"
)

func devNull(t *testing.T) *os.File {
	t.Helper()
	f, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestSetupWithoutTerminals(t *testing.T) {
	null := devNull(t)
	set, err := Setup(Options{
		Stdin:    null,
		Stdout:   null,
		Stderr:   null,
		Provider: pty.Detect(pty.DefaultProbe()),
	})
	require.NoError(t, err)
	defer set.Close()

	assert.False(t, set.Shared)
	for _, c := range set.List() {
		assert.Equal(t, Pipe, c.Transport(), c.Role.String())
		assert.True(t, c.Open())
		assert.GreaterOrEqual(t, c.Fd(), 0)
	}
	assert.Equal(t, 3, set.Count())

	_, err = set.Out.Remote.Write([]byte("out"))
	require.NoError(t, err)
	buf := make([]byte, 8)
	n, err := set.Out.Local.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "out", string(buf[:n]))

	_, err = set.In.Local.Write([]byte("in"))
	require.NoError(t, err)
	n, err = set.In.Remote.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "in", string(buf[:n]))
}

func TestSetupStderrIsAlwaysPipe(t *testing.T) {
	host, tty, err := creackpty.Open()
	if err != nil {
		t.Skipf("cannot allocate pty: %v", err)
	}
	defer host.Close()
	defer tty.Close()

	set, err := Setup(Options{
		Stdin:    devNull(t),
		Stdout:   devNull(t),
		Stderr:   tty,
		Provider: pty.Detect(pty.DefaultProbe()),
	})
	require.NoError(t, err)
	defer set.Close()

	assert.Equal(t, Pipe, set.Err.Transport())
}

func TestSetupSharedTerminal(t *testing.T) {
	host, tty, err := creackpty.Open()
	if err != nil {
		t.Skipf("cannot allocate pty: %v", err)
	}
	defer host.Close()
	defer tty.Close()
	require.NoError(t, creackpty.Setsize(host, &creackpty.Winsize{Rows: 24, Cols: 80}))

	set, err := Setup(Options{
		Stdin:    tty,
		Stdout:   tty,
		Stderr:   devNull(t),
		Provider: pty.Detect(pty.DefaultProbe()),
		Width:    10,
	})
	require.NoError(t, err)
	defer set.Close()

	require.True(t, set.Shared)
	assert.Equal(t, Pty, set.Out.Transport())
	assert.Same(t, set.Out.Pair, set.In.Pair)
	assert.Equal(t, set.Out.Fd(), set.In.Fd())

	ws, err := set.Out.Pair.Size()
	require.NoError(t, err)
	assert.Equal(t, uint16(70), ws.Cols)
	assert.Equal(t, uint16(24), ws.Rows)

	require.NoError(t, creackpty.Setsize(host, &creackpty.Winsize{Rows: 40, Cols: 120}))
	require.NoError(t, set.Resize(20))
	ws, err = set.Out.Pair.Size()
	require.NoError(t, err)
	assert.Equal(t, uint16(100), ws.Cols)
	assert.Equal(t, uint16(40), ws.Rows)

	require.NoError(t, set.Retire(set.Out))
	assert.False(t, set.In.Open())
	assert.Equal(t, -1, set.In.Fd())
	assert.Equal(t, 1, set.Count())
}

func TestSetupSeparateTerminals(t *testing.T) {
	host, tty, err := creackpty.Open()
	if err != nil {
		t.Skipf("cannot allocate pty: %v", err)
	}
	defer host.Close()
	defer tty.Close()

	set, err := Setup(Options{
		Stdin:    devNull(t),
		Stdout:   tty,
		Stderr:   devNull(t),
		Provider: pty.Detect(pty.DefaultProbe()),
	})
	require.NoError(t, err)
	defer set.Close()

	assert.False(t, set.Shared)
	assert.Equal(t, Pty, set.Out.Transport())
	assert.Equal(t, Pipe, set.In.Transport())
}

func TestRetireAndCloseRemote(t *testing.T) {
	null := devNull(t)
	set, err := Setup(Options{Stdin: null, Stdout: null, Stderr: null, Provider: pty.Detect(pty.DefaultProbe())})
	require.NoError(t, err)

	w := set.Err.Remote
	require.NoError(t, set.CloseRemote())
	assert.Nil(t, set.Err.Remote)

	// With the only writer gone the read side reports EOF.
	_, err = set.Err.Local.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, w.Close(), os.ErrClosed)

	require.NoError(t, set.Retire(set.Err))
	require.NoError(t, set.Retire(set.Err))
	assert.Equal(t, -1, set.Err.Fd())
	assert.Equal(t, set.Out, set.Get(ChildToOut))
	assert.Equal(t, set.In, set.Get(InToChild))
	assert.Len(t, set.Live(), 2)

	require.NoError(t, set.Close())
	assert.Equal(t, 0, set.Count())
}

func TestColumns(t *testing.T) {
	assert.Equal(t, uint16(78), Columns(80, 2))
	assert.Equal(t, uint16(1), Columns(2, 2))
	assert.Equal(t, uint16(1), Columns(2, 5))
	assert.Equal(t, uint16(0), Columns(0, 2))
	assert.Equal(t, uint16(80), Columns(80, 0))
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 2, Width([]byte("  "), nil))
	assert.Equal(t, 4, Width([]byte(">>"), []byte("<<")))
	assert.Equal(t, 4, Width([]byte("日本"), nil))
}

func TestRoleAndTransportNames(t *testing.T) {
	assert.Equal(t, "child-to-out", ChildToOut.String())
	assert.Equal(t, "child-to-err", ChildToErr.String())
	assert.Equal(t, "in-to-child", InToChild.String())
	assert.Equal(t, "pty", Pty.String())
	assert.Equal(t, "pipe", Pipe.String())
}
