package chattui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "hello world", want: "hello world"},
		{name: "color codes", in: "\x1b[31mred\x1b[0m text", want: "red text"},
		{name: "osc title", in: "\x1b]0;pwned\x07after", want: "after"},
		{name: "osc hyperlink", in: "\x1b]8;;http://evil\x1b\\click\x1b]8;;\x1b\\", want: "click"},
		{name: "clear screen", in: "a\x1b[2Jb", want: "ab"},
		{name: "bell and backspace", in: "x\x07\x08y", want: "xy"},
		{name: "carriage return", in: "one\r\ntwo\rthree", want: "one\ntwothree"},
		{name: "tab", in: "a\tb", want: "a    b"},
		{name: "bidi override", in: "abc‮def", want: "abcdef"},
		{name: "markup stays literal", in: "<script>alert(1)</script>", want: "<script>alert(1)</script>"},
		{name: "unicode", in: "héllo 👋", want: "héllo 👋"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeLine(t *testing.T) {
	require.Equal(t, "Evil Name", SanitizeLine("  Evil\nName\x1b[5m "))
	require.Empty(t, SanitizeLine("\x1b[0m"))
}
