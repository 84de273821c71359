package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TokenEnv overrides notion_token when set
const TokenEnv = "NOTION_TOKEN"

// ErrNoToken is returned by RequireToken when no integration token is set
var ErrNoToken = errors.New("notion_token is not set (config file or " + TokenEnv + ")")

// Config represents the notionbridge configuration
type Config struct {
	NotionToken     string        `json:"notion_token,omitempty"`
	NotesDir        string        `json:"notes_dir"`
	LogFile         string        `json:"log_file"`
	LogLevel        string        `json:"log_level"`
	AliasesFile     string        `json:"aliases_file,omitempty"`
	PageSize        int           `json:"page_size"`
	RequestTimeout  time.Duration `json:"-"` // Custom JSON handling below
	ExcludePatterns []string      `json:"exclude_patterns,omitempty"`
}

// rawConfig is the on-disk form, with the timeout as a duration string
type rawConfig struct {
	NotionToken     string   `json:"notion_token,omitempty"`
	NotesDir        string   `json:"notes_dir"`
	LogFile         string   `json:"log_file"`
	LogLevel        string   `json:"log_level"`
	AliasesFile     string   `json:"aliases_file,omitempty"`
	PageSize        int      `json:"page_size"`
	RequestTimeout  string   `json:"request_timeout"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		NotesDir:        filepath.Join(home, "notes"),
		LogFile:         "/tmp/notionbridge.log",
		LogLevel:        "info",
		AliasesFile:     filepath.Join(filepath.Dir(ConfigPath()), "aliases.yaml"),
		PageSize:        100,
		RequestTimeout:  30 * time.Second,
		ExcludePatterns: []string{},
	}
}

// ConfigPath returns the path to the config file
// Uses ~/.config on all platforms for consistency
// Can be overridden for testing
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to XDG if home dir unavailable
		return filepath.Join(xdg.ConfigHome, "notionbridge", "config.json")
	}
	return filepath.Join(home, ".config", "notionbridge", "config.json")
}

// StateFilePath returns the path to the push state file
// Uses platform-specific XDG data directory
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "notionbridge", "state.json")
}

// Load reads configuration from the config directory. NOTION_TOKEN
// overrides the token from the file.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if token := os.Getenv(TokenEnv); token != "" {
		cfg.NotionToken = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

func load() (*Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		// Return default config if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	defaults := DefaultConfig()
	cfg := &Config{
		NotionToken:     raw.NotionToken,
		NotesDir:        raw.NotesDir,
		LogFile:         raw.LogFile,
		LogLevel:        raw.LogLevel,
		AliasesFile:     raw.AliasesFile,
		PageSize:        raw.PageSize,
		RequestTimeout:  defaults.RequestTimeout,
		ExcludePatterns: raw.ExcludePatterns,
	}

	if raw.RequestTimeout != "" {
		cfg.RequestTimeout, err = time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid request_timeout format '%s': %w", raw.RequestTimeout, err)
		}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaults.PageSize
	}
	if cfg.ExcludePatterns == nil {
		cfg.ExcludePatterns = []string{}
	}

	return cfg, nil
}

// Save writes configuration to the config directory
func (c *Config) Save() error {
	configPath := ConfigPath()
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw := rawConfig{
		NotionToken:     c.NotionToken,
		NotesDir:        c.NotesDir,
		LogFile:         c.LogFile,
		LogLevel:        c.LogLevel,
		AliasesFile:     c.AliasesFile,
		PageSize:        c.PageSize,
		RequestTimeout:  c.RequestTimeout.String(),
		ExcludePatterns: c.ExcludePatterns,
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The token is a secret
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid. The token is optional
// here because offline commands do not need it.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.NotesDir, validation.Required),
		validation.Field(&c.LogFile, validation.Required),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.RequestTimeout, validation.By(positiveDuration)),
		validation.Field(&c.ExcludePatterns, validation.Each(validation.By(validPattern))),
	)
}

// RequireToken reports ErrNoToken when commands that talk to Notion
// cannot authenticate
func (c *Config) RequireToken() error {
	if c.NotionToken == "" {
		return ErrNoToken
	}
	return nil
}

func positiveDuration(value interface{}) error {
	d, _ := value.(time.Duration)
	if d <= 0 {
		return errors.New("must be a positive duration")
	}
	return nil
}

func validPattern(value interface{}) error {
	p, _ := value.(string)
	if _, err := filepath.Match(p, ""); err != nil {
		return fmt.Errorf("invalid glob %q: %w", p, err)
	}
	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.NotesDir, err = expandPath(c.NotesDir)
	if err != nil {
		return fmt.Errorf("failed to expand notes_dir: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	c.AliasesFile, err = expandPath(c.AliasesFile)
	if err != nil {
		return fmt.Errorf("failed to expand aliases_file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	return filepath.Abs(path)
}
