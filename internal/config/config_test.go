package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// useTempConfig points ConfigPath at a file inside a fresh temp dir
func useTempConfig(t *testing.T, name string) string {
	t.Helper()
	testConfigPath := filepath.Join(t.TempDir(), name)

	originalConfigPath := ConfigPath
	ConfigPath = func() string {
		return testConfigPath
	}
	t.Cleanup(func() {
		ConfigPath = originalConfigPath
	})
	return testConfigPath
}

func validConfig() *Config {
	return &Config{
		NotesDir:       "/path/to/notes",
		LogFile:        "/tmp/test.log",
		LogLevel:       "info",
		PageSize:       50,
		RequestTimeout: 10 * time.Second,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.NotesDir == "" {
		t.Error("Expected NotesDir to be set")
	}
	if cfg.LogFile == "" {
		t.Error("Expected LogFile to be set")
	}
	if cfg.AliasesFile == "" {
		t.Error("Expected AliasesFile to be set")
	}
	if cfg.PageSize != 100 {
		t.Errorf("Expected PageSize to be 100, got %d", cfg.PageSize)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected RequestTimeout to be 30s, got %v", cfg.RequestTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"empty notes_dir", func(c *Config) { c.NotesDir = "" }, true},
		{"empty log_file", func(c *Config) { c.LogFile = "" }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"debug log level", func(c *Config) { c.LogLevel = "debug" }, false},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, true},
		{"page size over limit", func(c *Config) { c.PageSize = 101 }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -5 * time.Second }, true},
		{"bad exclude glob", func(c *Config) { c.ExcludePatterns = []string{"[unclosed"} }, true},
		{"good exclude glob", func(c *Config) { c.ExcludePatterns = []string{"drafts/*", "*.tmp.md"} }, false},
		{"missing token is fine", func(c *Config) { c.NotionToken = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequireToken(t *testing.T) {
	cfg := validConfig()
	if err := cfg.RequireToken(); !errors.Is(err, ErrNoToken) {
		t.Errorf("RequireToken() = %v, want ErrNoToken", err)
	}
	cfg.NotionToken = "secret_abc"
	if err := cfg.RequireToken(); err != nil {
		t.Errorf("RequireToken() = %v, want nil", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	testConfigPath := useTempConfig(t, "config.json")
	t.Setenv(TokenEnv, "")

	testCfg := validConfig()
	testCfg.NotionToken = "secret_file"
	testCfg.RequestTimeout = 45 * time.Second
	testCfg.ExcludePatterns = []string{"archive/*"}

	// Save config
	if err := testCfg.Save(); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Check file exists and is private
	info, err := os.Stat(testConfigPath)
	if os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	// Load config
	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedCfg.RequestTimeout != testCfg.RequestTimeout {
		t.Errorf("RequestTimeout mismatch: got %v, want %v", loadedCfg.RequestTimeout, testCfg.RequestTimeout)
	}
	if loadedCfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", loadedCfg.PageSize)
	}
	if loadedCfg.NotionToken != "secret_file" {
		t.Errorf("NotionToken = %q, want secret_file", loadedCfg.NotionToken)
	}
	if len(loadedCfg.ExcludePatterns) != 1 || loadedCfg.ExcludePatterns[0] != "archive/*" {
		t.Errorf("ExcludePatterns = %v, want [archive/*]", loadedCfg.ExcludePatterns)
	}
}

func TestTokenFromEnvironment(t *testing.T) {
	useTempConfig(t, "config.json")
	t.Setenv(TokenEnv, "secret_env")

	cfg := validConfig()
	cfg.NotionToken = "secret_file"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.NotionToken != "secret_env" {
		t.Errorf("NotionToken = %q, want secret_env", loaded.NotionToken)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	testConfigPath := useTempConfig(t, "config.json")
	t.Setenv(TokenEnv, "")

	if err := os.WriteFile(testConfigPath, []byte(`{"notes_dir": "/notes", "log_file": "/tmp/x.log"}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "info" || cfg.PageSize != 100 || cfg.RequestTimeout != 30*time.Second {
		t.Errorf("defaults not applied: level=%q page_size=%d timeout=%v", cfg.LogLevel, cfg.PageSize, cfg.RequestTimeout)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	testConfigPath := useTempConfig(t, "config.json")

	if err := os.WriteFile(testConfigPath, []byte(`{"notes_dir": "/notes", "log_file": "/tmp/x.log", "request_timeout": "soon"}`), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on an unparsable request_timeout")
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	useTempConfig(t, "nonexistent.json")

	// Load should return default config when file doesn't exist
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}

	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.RequestTimeout)
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		contains string // The output should contain this
	}{
		{
			name:     "tilde expansion",
			input:    "~/test",
			contains: homeDir,
		},
		{
			name:     "tilde only",
			input:    "~",
			contains: homeDir,
		},
		{
			name:     "absolute path",
			input:    "/tmp/test",
			contains: "/tmp/test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := expandPath(tt.input)
			if err != nil {
				t.Fatalf("expandPath() error = %v", err)
			}
			if result == "" {
				t.Error("expandPath() returned empty string")
			}
			// Just verify it's not the original unexpanded path
			if tt.input[0] == '~' && result == tt.input {
				t.Errorf("Path was not expanded: %s", result)
			}
		})
	}
}

func TestConfigPathsExpanded(t *testing.T) {
	useTempConfig(t, "config.json")

	testCfg := validConfig()
	testCfg.NotesDir = "~/notes"
	testCfg.LogFile = "~/notionbridge.log"
	testCfg.AliasesFile = "~/.config/notionbridge/aliases.yaml"

	// Save and load
	if err := testCfg.Save(); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify paths are expanded (no longer contain ~)
	if loadedCfg.NotesDir[0] == '~' {
		t.Error("NotesDir was not expanded")
	}
	if loadedCfg.LogFile[0] == '~' {
		t.Error("LogFile was not expanded")
	}
	if loadedCfg.AliasesFile[0] == '~' {
		t.Error("AliasesFile was not expanded")
	}
}
