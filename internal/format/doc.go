// Package format expands the prefix and postfix templates written around each
// output line. A template is literal text plus two directives: "%%" for a
// literal percent sign and "%c" for the current local time.
package format
