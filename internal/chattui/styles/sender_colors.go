package styles

import (
	"hash/fnv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// SenderColorPalette is a curated ANSI 256 palette for stable sender colors.
// Red slots are left out so they stay reserved for notices.
var SenderColorPalette = []string{
	"33", "39", "45", "69", "75", "81", "87", "99",
	"111", "117", "123", "147", "153", "159", "183", "189",
}

// SenderColorMapper resolves deterministic per-sender styles and caches them.
type SenderColorMapper struct {
	palette []string

	mu    sync.RWMutex
	cache map[string]lipgloss.Style
}

// NewSenderColorMapper returns a mapper over palette, or the default palette when empty.
func NewSenderColorMapper(palette []string) *SenderColorMapper {
	if len(palette) == 0 {
		palette = SenderColorPalette
	}
	return &SenderColorMapper{
		palette: append([]string(nil), palette...),
		cache:   make(map[string]lipgloss.Style, 16),
	}
}

// Foreground returns a cached bold foreground style for sender.
func (m *SenderColorMapper) Foreground(sender string) lipgloss.Style {
	key := normalizeSender(sender)

	m.mu.RLock()
	if style, ok := m.cache[key]; ok {
		m.mu.RUnlock()
		return style
	}
	m.mu.RUnlock()

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.ColorCode(key))).Bold(true)

	m.mu.Lock()
	m.cache[key] = style
	m.mu.Unlock()
	return style
}

// ColorCode returns the ANSI-256 color code selected for sender.
func (m *SenderColorMapper) ColorCode(sender string) string {
	key := normalizeSender(sender)
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return m.palette[int(h.Sum32()%uint32(len(m.palette)))]
}

func normalizeSender(sender string) string {
	normalized := strings.ToLower(strings.TrimSpace(sender))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
