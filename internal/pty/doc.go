// Package pty allocates master/slave pseudo-terminal pairs and binds a child
// process to one as its controlling terminal.
//
// Three providers exist: the native facility through github.com/creack/pty,
// the BSD-style legacy /dev/ptyXY namespace, and a socket pair that carries
// bytes but has no terminal semantics. Detect picks one once at startup.
package pty
