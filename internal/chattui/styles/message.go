package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// MessageStyles contains pre-built styles for message rendering.
// Inputs must already be sanitized.
type MessageStyles struct {
	Theme   Theme
	Senders *SenderColorMapper

	Own       lipgloss.Style
	Timestamp lipgloss.Style
	Body      lipgloss.Style
	Empty     lipgloss.Style
}

// NewMessageStyles builds a reusable style set for messages.
func NewMessageStyles(theme Theme) MessageStyles {
	return MessageStyles{
		Theme:     theme,
		Senders:   NewSenderColorMapper(theme.SenderPalette),
		Own:       lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Own)).Bold(true),
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Muted)),
		Body:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Foreground)),
		Empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Base.Muted)).
			Italic(true),
	}
}

// RenderHeader renders "sender · label".
func (s MessageStyles) RenderHeader(sender, label string, self bool) string {
	name := strings.TrimSpace(sender)
	if name == "" {
		name = "unknown"
	}
	nameStyle := s.Senders.Foreground(name)
	if self {
		nameStyle = s.Own
	}
	header := nameStyle.Render(name)
	if label != "" {
		header += " " + s.Timestamp.Render("· "+label)
	}
	return header
}

// RenderBody renders wrapped body text.
func (s MessageStyles) RenderBody(body string, width int) string {
	return s.Body.Render(WrapBody(body, width))
}

// WrapBody soft-wraps on words, then hard-wraps words longer than width.
func WrapBody(body string, width int) string {
	if width <= 0 {
		return body
	}
	parts := strings.Split(body, "\n")
	for i := range parts {
		parts[i] = wrap.String(wordwrap.String(parts[i], width), width)
	}
	return strings.Join(parts, "\n")
}
