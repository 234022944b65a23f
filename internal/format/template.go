package format

import (
	"fmt"
	"strings"
	"time"
)

// MaxTemplateLen bounds both the template input considered and the expanded
// output. Anything past it is truncated.
const MaxTemplateLen = 1 << 20

// TimeLayout is the calendar-time rendering used for the %c directive.
const TimeLayout = time.ANSIC

// Warning describes one malformed directive.
type Warning struct {
	Template  string
	Offset    int
	Directive byte
	Trailing  bool
}

func (w Warning) String() string {
	if w.Trailing {
		return fmt.Sprintf("format %q: lone %% at end of template", w.Template)
	}
	return fmt.Sprintf("format %q: unknown directive %%%c at offset %d", w.Template, w.Directive, w.Offset)
}

// WarnFunc receives warnings during expansion. A nil WarnFunc disables them.
type WarnFunc func(Warning)

// Template is an immutable prefix or postfix template.
type Template string

// Expand renders t using now for any %c directive. A lone trailing % and
// unknown directives drop the %, keep the directive character as literal text
// and are reported to warn.
func (t Template) Expand(now time.Time, warn WarnFunc) string {
	src := string(t)
	if len(src) > MaxTemplateLen {
		src = src[:MaxTemplateLen]
	}
	if strings.IndexByte(src, '%') < 0 {
		return src
	}

	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src) && b.Len() < MaxTemplateLen; i++ {
		c := src[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(src) {
			if warn != nil {
				warn(Warning{Template: string(t), Offset: i, Trailing: true})
			}
			break
		}
		i++
		switch d := src[i]; d {
		case '%':
			b.WriteByte('%')
		case 'c':
			b.WriteString(clock(now))
		default:
			if warn != nil {
				warn(Warning{Template: string(t), Offset: i - 1, Directive: d})
			}
			b.WriteByte(d)
		}
	}

	out := b.String()
	if len(out) > MaxTemplateLen {
		out = out[:MaxTemplateLen]
	}
	return out
}

// Validate runs the warning pass over t and returns how many malformed
// directives it found.
func (t Template) Validate(warn WarnFunc) int {
	n := 0
	t.Expand(time.Now(), func(w Warning) {
		n++
		if warn != nil {
			warn(w)
		}
	})
	return n
}

// Render expands t at the current wall-clock time without warnings.
func (t Template) Render() []byte {
	return []byte(t.Expand(time.Now(), nil))
}

func clock(now time.Time) string {
	return strings.TrimRight(now.Local().Format(TimeLayout), "\r\n")
}
