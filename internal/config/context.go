package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Context is the remembered CLI selection: who is viewing and which offer
// conversation was opened last.
type Context struct {
	// ViewerID identifies the local participant.
	ViewerID string `yaml:"viewer_id,omitempty"`
	// ViewerName is the display name of the local participant.
	ViewerName string `yaml:"viewer_name,omitempty"`
	// LastOfferID is the most recently opened conversation.
	LastOfferID string `yaml:"last_offer_id,omitempty"`
	// UpdatedAt is when the context was last modified.
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// IsEmpty returns true if no context is set.
func (c *Context) IsEmpty() bool {
	return c.ViewerID == "" && c.LastOfferID == ""
}

// HasViewer returns true if a viewer is set.
func (c *Context) HasViewer() bool {
	return c.ViewerID != ""
}

// SetViewer records the local participant.
func (c *Context) SetViewer(id, name string) {
	c.ViewerID = strings.TrimSpace(id)
	c.ViewerName = strings.TrimSpace(name)
	c.UpdatedAt = time.Now()
}

// SetLastOffer records the conversation that was opened.
func (c *Context) SetLastOffer(offerID string) {
	c.LastOfferID = strings.TrimSpace(offerID)
	c.UpdatedAt = time.Now()
}

// String returns a human-readable representation of the context.
func (c *Context) String() string {
	if c.IsEmpty() {
		return "(no context set)"
	}
	var parts []string
	if c.HasViewer() {
		name := c.ViewerName
		if name == "" {
			name = c.ViewerID
		}
		parts = append(parts, fmt.Sprintf("viewer:%s", name))
	}
	if c.LastOfferID != "" {
		parts = append(parts, fmt.Sprintf("offer:%s", c.LastOfferID))
	}
	return strings.Join(parts, " ")
}

// ContextStore manages loading and saving context.
type ContextStore struct {
	path string
	mu   sync.RWMutex
}

// NewContextStore creates a new context store.
// If path is empty, uses ~/.config/offerchat/context.yaml.
func NewContextStore(path string) *ContextStore {
	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = filepath.Join(homeDir, ".config", "offerchat", "context.yaml")
	}
	return &ContextStore{path: path}
}

// Path returns the context file path.
func (s *ContextStore) Path() string {
	return s.path
}

// Load reads the context from disk.
// Returns an empty context if the file doesn't exist.
func (s *ContextStore) Load() (*Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := &Context{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ctx, nil
		}
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}

	if err := yaml.Unmarshal(data, ctx); err != nil {
		return nil, fmt.Errorf("failed to parse context file: %w", err)
	}

	return ctx, nil
}

// Save writes the context to disk.
func (s *ContextStore) Save(ctx *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create context directory: %w", err)
	}

	data, err := yaml.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("failed to serialize context: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the context file.
func (s *ContextStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove context file: %w", err)
	}
	return nil
}
