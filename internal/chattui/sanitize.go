package chattui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

const tabWidth = 4

// Sanitize makes untrusted text inert for a terminal: escape sequences are
// stripped, remaining control characters dropped and tabs expanded.
// Newlines survive.
func Sanitize(s string) string {
	return sanitize(s, false)
}

// SanitizeLine is Sanitize for single-line fields such as sender names.
func SanitizeLine(s string) string {
	return strings.TrimSpace(sanitize(s, true))
}

func sanitize(s string, singleLine bool) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = ansi.Strip(line)
	}
	s = strings.Join(lines, "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			if singleLine {
				b.WriteByte(' ')
			} else {
				b.WriteByte('\n')
			}
		case unicode.IsControl(r), unicode.Is(unicode.Bidi_Control, r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
