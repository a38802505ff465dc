// Package styles defines lipgloss themes for the offer chat terminal UI.
package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// MessageColors defines colors for message bubbles.
type MessageColors struct {
	Own   string
	Other string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header string
	Footer string
	Notice string
	Prompt string
}

// Theme defines the chat UI style tokens.
type Theme struct {
	Name          string
	BorderStyle   string // "rounded", "sharp", "double", "hidden"
	SenderPalette []string

	Base    BaseColors
	Message MessageColors
	Chrome  ChromeColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// Lookup returns the named theme, falling back to DefaultTheme.
func Lookup(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return DefaultTheme
}

// Border returns the lipgloss border for the theme.
func (t Theme) Border() lipgloss.Border {
	switch t.BorderStyle {
	case "sharp":
		return lipgloss.NormalBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

// Chrome holds the styles for the frame around the message list.
type Chrome struct {
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Notice  lipgloss.Style
	Prompt  lipgloss.Style
	Muted   lipgloss.Style
	Divider lipgloss.Style
}

// NewChrome builds frame styles for theme.
func NewChrome(theme Theme) Chrome {
	return Chrome{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Chrome.Header)).
			Bold(true),
		Footer: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.Footer)),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Chrome.Notice)).
			Bold(true),
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.Prompt)),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Muted)),
		Divider: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Border)),
	}
}
