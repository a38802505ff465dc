// Package config handles offerchat configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tOgg1/offerchat/internal/chat"
	"github.com/tOgg1/offerchat/internal/logging"
)

// Config is the root configuration structure for offerchat.
type Config struct {
	// API settings for the messages service.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Chat widget behaviour.
	Chat ChatConfig `yaml:"chat" mapstructure:"chat"`

	// Logging settings.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// TUI settings.
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`

	// DevServer settings for the local backend.
	DevServer DevServerConfig `yaml:"dev_server" mapstructure:"dev_server"`

	// ConfigDir is where context and defaults live (default: ~/.config/offerchat).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// APIConfig contains the messages service endpoint and credentials.
type APIConfig struct {
	// BaseURL is the messages API base, e.g. https://example.com/api.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// SessionCookie is the name of the session cookie sent with every request.
	SessionCookie string `yaml:"session_cookie" mapstructure:"session_cookie"`

	// SessionToken is the session cookie value.
	SessionToken string `yaml:"session_token" mapstructure:"session_token"`

	// BearerToken is sent as an Authorization header when set.
	BearerToken string `yaml:"bearer_token" mapstructure:"bearer_token"`

	// RequestTimeout bounds each request. Zero means "same as poll interval".
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// ChatConfig contains widget settings.
type ChatConfig struct {
	// ContainerID names the host container the widget attaches to.
	ContainerID string `yaml:"container_id" mapstructure:"container_id"`

	// PollInterval is how often the open conversation is refreshed.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// MaxMessageLength is the maximum message length in characters.
	MaxMessageLength int `yaml:"max_message_length" mapstructure:"max_message_length"`

	// NoticeDuration is how long transient notices stay visible.
	NoticeDuration time.Duration `yaml:"notice_duration" mapstructure:"notice_duration"`

	// MaxInFlight bounds concurrent poll fetches.
	MaxInFlight int `yaml:"max_in_flight" mapstructure:"max_in_flight"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`
}

// DevServerConfig contains settings for the local development backend.
type DevServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr" mapstructure:"addr"`

	// DBPath is the SQLite database file. Empty means ConfigDir/devserver.db.
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:       "http://127.0.0.1:8787/api",
			SessionCookie: chat.DefaultSessionCookie,
		},
		Chat: ChatConfig{
			ContainerID:      chat.DefaultContainerID,
			PollInterval:     chat.DefaultPollInterval,
			MaxMessageLength: chat.DefaultMaxMessageLength,
			NoticeDuration:   chat.DefaultNoticeDuration,
			MaxInFlight:      chat.DefaultMaxInFlight,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		TUI: TUIConfig{
			Theme: "default",
		},
		DevServer: DevServerConfig{
			Addr: "127.0.0.1:8787",
		},
		ConfigDir: filepath.Join(homeDir, ".config", "offerchat"),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return fmt.Errorf("api.base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.RequestTimeout < 0 {
		return fmt.Errorf("api.request_timeout must not be negative")
	}

	if c.Chat.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("chat.poll_interval must be at least 100ms")
	}
	if c.Chat.MaxMessageLength < 1 {
		return fmt.Errorf("chat.max_message_length must be at least 1")
	}
	if c.Chat.NoticeDuration < 0 {
		return fmt.Errorf("chat.notice_duration must not be negative")
	}
	if c.Chat.MaxInFlight < 1 {
		return fmt.Errorf("chat.max_in_flight must be at least 1")
	}

	switch c.TUI.Theme {
	case "default", "high-contrast":
	default:
		return fmt.Errorf("tui.theme must be one of default, high-contrast")
	}

	return nil
}

// ChatConfig maps the loaded settings onto the widget configuration.
func (c *Config) ChatConfig() chat.Config {
	return chat.Config{
		BaseURL:          strings.TrimSpace(c.API.BaseURL),
		ContainerID:      c.Chat.ContainerID,
		PollInterval:     c.Chat.PollInterval,
		MaxMessageLength: c.Chat.MaxMessageLength,
		RequestTimeout:   c.API.RequestTimeout,
		NoticeDuration:   c.Chat.NoticeDuration,
		MaxInFlight:      c.Chat.MaxInFlight,
		SessionCookie:    c.API.SessionCookie,
		SessionToken:     c.API.SessionToken,
		BearerToken:      c.API.BearerToken,
	}
}

// LogConfig maps the loaded settings onto the logging package.
func (c *Config) LogConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.File = c.Logging.File
	cfg.EnableCaller = c.Logging.EnableCaller
	return cfg
}

// DevServerDBPath returns the full dev server database path.
func (c *Config) DevServerDBPath() string {
	if c.DevServer.DBPath != "" {
		return c.DevServer.DBPath
	}
	return filepath.Join(c.ConfigDir, "devserver.db")
}

// ContextPath returns the saved-context file path.
func (c *Config) ContextPath() string {
	return filepath.Join(c.ConfigDir, "context.yaml")
}
