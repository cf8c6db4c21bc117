package console

import (
	"fmt"
	"strings"
)

// ANSI escape codes used by the renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Cyan    = "\033[36m"
	Magenta = "\033[35m"

	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Style paints text with ANSI colors when Enabled and passes it through otherwise.
type Style struct {
	Enabled bool
}

// Paint wraps text in color and a reset suffix.
func (s Style) Paint(color, text string) string {
	if !s.Enabled || text == "" {
		return text
	}
	return color + text + Reset
}

// Paintf formats and paints.
func (s Style) Paintf(color, format string, args ...any) string {
	return s.Paint(color, fmt.Sprintf(format, args...))
}

// StripANSI removes every \033[...m sequence from s.
func StripANSI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if j := strings.IndexByte(s[i+2:], 'm'); j >= 0 {
				i += j + 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// padRight pads s with spaces to width printable columns, ignoring escape codes.
func padRight(s string, width int) string {
	if n := len([]rune(StripANSI(s))); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
