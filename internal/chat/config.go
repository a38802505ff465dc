// Package chat implements the offer conversation widget: a polling message
// view bound to one offer at a time, with send, safe rendering and
// transient error notices.
package chat

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultContainerID      = "offer-chat"
	DefaultPollInterval     = 3 * time.Second
	DefaultMaxMessageLength = 1000
	DefaultNoticeDuration   = 3 * time.Second
	DefaultMaxInFlight      = 2
	DefaultSessionCookie    = "session"
)

// Config is supplied at construction. Zero values take the documented defaults.
type Config struct {
	// BaseURL is the messages API base; requests go to {BaseURL}/messages.
	BaseURL string

	// ContainerID names the host container the widget attaches to.
	ContainerID string

	// PollInterval is the refresh period while a conversation is open. Default 3s.
	PollInterval time.Duration

	// MaxMessageLength is the maximum message length in characters. Default 1000.
	MaxMessageLength int

	// RequestTimeout bounds each request. Defaults to PollInterval.
	RequestTimeout time.Duration

	// NoticeDuration is how long a transient notice stays up. Default 3s.
	NoticeDuration time.Duration

	// MaxInFlight bounds concurrent poll fetches. Default 2.
	MaxInFlight int

	// SessionCookie and SessionToken are sent as a cookie with every request.
	SessionCookie string
	SessionToken  string

	// BearerToken is sent as an Authorization header when set.
	BearerToken string
}

// Normalize fills zero values with defaults.
func (c Config) Normalize() Config {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.ContainerID = strings.TrimSpace(c.ContainerID)
	if c.ContainerID == "" {
		c.ContainerID = DefaultContainerID
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxMessageLength <= 0 {
		c.MaxMessageLength = DefaultMaxMessageLength
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = c.PollInterval
	}
	if c.NoticeDuration <= 0 {
		c.NoticeDuration = DefaultNoticeDuration
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = DefaultMaxInFlight
	}
	c.SessionCookie = strings.TrimSpace(c.SessionCookie)
	if c.SessionCookie == "" {
		c.SessionCookie = DefaultSessionCookie
	}
	return c
}

// Validate reports configuration the client cannot work with.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url required")
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base url must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("base url has no host")
	}
	if c.PollInterval < 0 || c.RequestTimeout < 0 || c.NoticeDuration < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
