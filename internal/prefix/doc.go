// Package prefix rewrites a byte stream so that every logical line starts
// with a prefix and ends with a postfix. A logical line ends at '\r' or '\n'.
//
// The engine is streaming: it never waits for a complete line. Whether the
// next byte begins a new line is carried between calls in a LineState owned
// by the caller, so a line split across reads gets exactly one prefix.
package prefix
