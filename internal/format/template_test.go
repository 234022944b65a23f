package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandLiterals(t *testing.T) {
	tests := []struct {
		name     string
		template Template
		expected string
	}{
		{"empty", "", ""},
		{"plain", "  ", "  "},
		{"escaped percent", "100%% ", "100% "},
		{"double escape", "%%%%", "%%"},
		{"mixed", "[%%out%%] ", "[%out%] "},
	}
	now := time.Date(2024, 3, 5, 7, 8, 9, 0, time.Local)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.template.Expand(now, nil))
		})
	}
}

func TestExpandIsTimeIndependentWithoutClock(t *testing.T) {
	tmpl := Template("a%%b> ")
	first := tmpl.Expand(time.Unix(0, 0), nil)
	second := tmpl.Expand(time.Now(), nil)
	assert.Equal(t, first, second)
}

func TestExpandClock(t *testing.T) {
	now := time.Date(2024, 3, 5, 7, 8, 9, 0, time.Local)
	out := Template("[%c] ").Expand(now, nil)

	assert.Equal(t, "[Tue Mar  5 07:08:09 2024] ", out)
	assert.False(t, strings.ContainsAny(out, "\r\n"))
}

func TestExpandTrailingPercent(t *testing.T) {
	var warnings []Warning
	out := Template("abc%").Expand(time.Now(), func(w Warning) {
		warnings = append(warnings, w)
	})

	assert.Equal(t, "abc", out)
	require.Len(t, warnings, 1)
	assert.True(t, warnings[0].Trailing)
	assert.Equal(t, 3, warnings[0].Offset)
}

func TestExpandUnknownDirective(t *testing.T) {
	var warnings []Warning
	out := Template("%x-%y").Expand(time.Now(), func(w Warning) {
		warnings = append(warnings, w)
	})

	assert.Equal(t, "x-y", out)
	require.Len(t, warnings, 2)
	assert.Equal(t, byte('x'), warnings[0].Directive)
	assert.Equal(t, 0, warnings[0].Offset)
	assert.Equal(t, byte('y'), warnings[1].Directive)
	assert.Equal(t, 3, warnings[1].Offset)
}

func TestValidate(t *testing.T) {
	calls := 0
	n := Template("x%").Validate(func(Warning) { calls++ })
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, calls)

	assert.Equal(t, 1, Template("x%").Validate(nil))
	assert.Equal(t, 0, Template("%% %c").Validate(nil))
}

func TestExpandWarningsDisabled(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, "abc", Template("abc%").Expand(time.Now(), nil))
	})
}

func TestExpandTruncatesOversizedTemplate(t *testing.T) {
	big := Template(strings.Repeat("ab", MaxTemplateLen))
	out := big.Expand(time.Now(), nil)
	assert.Len(t, out, MaxTemplateLen)

	clocks := Template(strings.Repeat("%c", MaxTemplateLen/2))
	assert.LessOrEqual(t, len(clocks.Expand(time.Now(), nil)), MaxTemplateLen)
}

func TestWarningString(t *testing.T) {
	assert.Contains(t, Warning{Template: "a%", Trailing: true}.String(), "lone %")
	assert.Contains(t, Warning{Template: "%q", Directive: 'q'}.String(), "%q")
}
