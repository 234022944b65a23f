package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PiranhaCodes/ind/internal/format"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"IND_PREFIX", "IND_POSTFIX", "IND_ERR_PREFIX", "IND_ERR_POSTFIX", "IND_VERBOSE"} {
		if v, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, v) })
			os.Unsetenv(key)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "  ", cfg.Prefix)
	assert.Equal(t, "", cfg.Postfix)
	assert.Equal(t, ">>", cfg.ErrPrefix)
	assert.Equal(t, "", cfg.ErrPostfix)
	assert.Equal(t, 0, cfg.Verbose)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("IND_PREFIX", "[out] ")
	t.Setenv("IND_ERR_PREFIX", "")
	t.Setenv("IND_ERR_POSTFIX", " <")
	t.Setenv("IND_VERBOSE", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "[out] ", cfg.Prefix)
	assert.Equal(t, "", cfg.ErrPrefix)
	assert.Equal(t, " <", cfg.ErrPostfix)
	assert.Equal(t, 2, cfg.Verbose)
}

func TestLoadRejectsBadVerbosity(t *testing.T) {
	clearEnv(t)
	t.Setenv("IND_VERBOSE", "loud")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Prefix: "%c %", Postfix: "%%", ErrPrefix: "%z", ErrPostfix: ""}
	var got []format.Warning
	n := cfg.Validate(func(w format.Warning) { got = append(got, w) })
	assert.Equal(t, 2, n)
	assert.Len(t, got, 2)
}

func TestCommand(t *testing.T) {
	argv, err := Command([]string{"ls", "-l"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "-l"}, argv)

	t.Setenv("SHELL", "/bin/sh")
	argv, err = Command(nil)
	require.NoError(t, err)
	require.Len(t, argv, 1)
	assert.Equal(t, "/bin/sh", argv[0])
}

func TestCommandSkipsUnusableShell(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, nil, 0644))

	for _, shell := range []string{plain, dir, filepath.Join(dir, "missing")} {
		t.Setenv("SHELL", shell)
		argv, err := Command(nil)
		require.NoError(t, err)
		require.Len(t, argv, 1)
		assert.NotEqual(t, shell, argv[0])
		assert.Contains(t, fallbackShells, argv[0])
	}
}

func TestCommandUsesExecutableShell(t *testing.T) {
	script := filepath.Join(t.TempDir(), "myshell")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0755))

	t.Setenv("SHELL", script)
	argv, err := Command(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{script}, argv)
}
