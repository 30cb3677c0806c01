//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/music/library/albums",
			expected: filepath.Join(home, "music", "library", "albums"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
		{
			name:     "tilde with slash",
			input:    "~/",
			expected: filepath.Join(home, ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	// Should have at least one path
	if len(paths) == 0 {
		t.Error("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	// If we have home dir, first path should be ~/.config/essai/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		expectedFirst := filepath.Join(home, ".config", "essai", "config.toml")
		if paths[0] != expectedFirst {
			t.Errorf("first config path = %q, want %q", paths[0], expectedFirst)
		}
	}
}

func TestHasLastfmConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name: "both APIKey and APISecret set",
			config: Config{
				Lastfm: LastfmConfig{
					APIKey:    "my-api-key",
					APISecret: "my-api-secret",
				},
			},
			expected: true,
		},
		{
			name: "only APIKey set",
			config: Config{
				Lastfm: LastfmConfig{
					APIKey: "my-api-key",
				},
			},
			expected: false,
		},
		{
			name: "only APISecret set",
			config: Config{
				Lastfm: LastfmConfig{
					APISecret: "my-api-secret",
				},
			},
			expected: false,
		},
		{
			name:     "neither set",
			config:   Config{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.HasLastfmConfig()
			if result != tt.expected {
				t.Errorf("HasLastfmConfig() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIURL, EnvAPIToken, EnvRedisAddr} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}
	return path
}

func TestLoad_EmptyConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := load([]string{writeConfig(t, "")})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("load() returned nil config")
	}
	if cfg.UsesRedis() {
		t.Error("UsesRedis() = true for empty config")
	}
	if !cfg.Notifications.IsEnabled() || !cfg.MPRIS.IsEnabled() {
		t.Error("toggles should default to enabled")
	}
}

func TestLoad_MissingFilesIgnored(t *testing.T) {
	clearEnv(t)
	_, err := load([]string{filepath.Join(t.TempDir(), "nope.toml")})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
}

func TestLoad_BasicConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[api]
base_url = "http://example.com/api/"
timeout = "30s"
rate_limit = 2.5

[player]
load_timeout = "5s"
poll_interval = "50ms"
max_download_mb = 20

[storage]
backend = "redis"
path = "~/essai.db"

[redis]
addr = "localhost:6379"
db = 2

[notifications]
enabled = false
`)

	cfg, err := load([]string{path})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	// Trailing slash is removed
	if cfg.API.BaseURL != "http://example.com/api" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://example.com/api")
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API.Timeout = %v, want 30s", cfg.API.Timeout)
	}
	if cfg.API.RateLimit != 2.5 {
		t.Errorf("API.RateLimit = %v, want 2.5", cfg.API.RateLimit)
	}
	if cfg.Player.LoadTimeout != 5*time.Second {
		t.Errorf("Player.LoadTimeout = %v, want 5s", cfg.Player.LoadTimeout)
	}
	if cfg.Player.PollInterval != 50*time.Millisecond {
		t.Errorf("Player.PollInterval = %v, want 50ms", cfg.Player.PollInterval)
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("Redis.DB = %d, want 2", cfg.Redis.DB)
	}
	if !cfg.UsesRedis() {
		t.Error("UsesRedis() = false, want true")
	}
	if cfg.Notifications.IsEnabled() {
		t.Error("Notifications.IsEnabled() = true, want false")
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "essai.db"); cfg.Storage.Path != want {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, want)
	}
}

func TestLoad_LastFileWins(t *testing.T) {
	clearEnv(t)
	first := writeConfig(t, `
[api]
base_url = "http://first"
token = "first-token"
`)
	second := writeConfig(t, `
[api]
base_url = "http://second"
`)

	cfg, err := load([]string{first, second})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.API.BaseURL != "http://second" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://second")
	}
	if cfg.API.Token != "first-token" {
		t.Errorf("API.Token = %q, want %q", cfg.API.Token, "first-token")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://env/api/")
	t.Setenv(EnvAPIToken, "env-token")
	t.Setenv(EnvRedisAddr, "redis:6379")

	path := writeConfig(t, `
[api]
base_url = "http://file"
token = "file-token"
`)

	cfg, err := load([]string{path})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.API.BaseURL != "http://env/api" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://env/api")
	}
	if cfg.API.Token != "env-token" {
		t.Errorf("API.Token = %q, want %q", cfg.API.Token, "env-token")
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Redis.Addr, "redis:6379")
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	clearEnv(t)
	_, err := load([]string{writeConfig(t, "invalid = [[[")})
	if err == nil {
		t.Error("load() expected error for invalid TOML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	_, err := load([]string{writeConfig(t, "[player]\nload_timeout = \"soon\"\n")})
	if err == nil {
		t.Error("load() expected error for invalid duration, got nil")
	}
}

func TestGetPlayerConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	p := cfg.GetPlayerConfig()

	checks := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"LoadTimeout", p.LoadTimeout, 10 * time.Second},
		{"RetryDelay", p.RetryDelay, time.Second},
		{"PersistInterval", p.PersistInterval, 5 * time.Second},
		{"RestartThreshold", p.RestartThreshold, 3 * time.Second},
		{"PollInterval", p.PollInterval, 100 * time.Millisecond},
		{"TimeUpdateInterval", p.TimeUpdateInterval, 250 * time.Millisecond},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if p.MaxDownloadMB != 100 {
		t.Errorf("MaxDownloadMB = %d, want 100", p.MaxDownloadMB)
	}
	if p.MaxDownloadBytes() != 100<<20 {
		t.Errorf("MaxDownloadBytes() = %d, want %d", p.MaxDownloadBytes(), 100<<20)
	}
}

func TestGetPlayerConfig_Clamped(t *testing.T) {
	cfg := &Config{Player: PlayerConfig{
		PollInterval:       time.Millisecond,
		TimeUpdateInterval: -time.Second,
		MaxDownloadMB:      1 << 20,
	}}
	p := cfg.GetPlayerConfig()

	if p.PollInterval != 10*time.Millisecond {
		t.Errorf("PollInterval = %v, want 10ms", p.PollInterval)
	}
	if p.TimeUpdateInterval != 250*time.Millisecond {
		t.Errorf("TimeUpdateInterval = %v, want 250ms", p.TimeUpdateInterval)
	}
	if p.MaxDownloadMB != 2048 {
		t.Errorf("MaxDownloadMB = %d, want 2048", p.MaxDownloadMB)
	}
}

func TestPlayerConfig_Playback(t *testing.T) {
	p := PlayerConfig{
		LoadTimeout:      2 * time.Second,
		RetryDelay:       3 * time.Second,
		PersistInterval:  4 * time.Second,
		RestartThreshold: 5 * time.Second,
	}
	got := p.Playback()

	if got.LoadTimeout != 2*time.Second || got.RetryDelay != 3*time.Second ||
		got.PersistInterval != 4*time.Second || got.RestartThreshold != 5*time.Second {
		t.Errorf("Playback() = %+v", got)
	}
	if got.RecordTimeout <= 0 {
		t.Errorf("RecordTimeout = %v, want default", got.RecordTimeout)
	}
}

func TestGetAPIConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	api := cfg.GetAPIConfig()

	if api.BaseURL != "http://localhost:8000/api" {
		t.Errorf("BaseURL = %q", api.BaseURL)
	}
	if api.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", api.Timeout)
	}
	if api.RateLimit != 10 {
		t.Errorf("RateLimit = %v, want 10", api.RateLimit)
	}
}

func TestGetLogConfig(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"", "info"},
		{"DEBUG", "debug"},
		{"warn", "warn"},
		{"verbose", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{Log: LogConfig{Level: tt.level}}
			l := cfg.GetLogConfig()
			if l.Level != tt.want {
				t.Errorf("Level = %q, want %q", l.Level, tt.want)
			}
			if l.MaxSizeMB != 10 || l.MaxBackups != 3 || l.MaxAgeDays != 28 {
				t.Errorf("rotation defaults = %d/%d/%d", l.MaxSizeMB, l.MaxBackups, l.MaxAgeDays)
			}
		})
	}
}

func TestUsesRedis(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{"default", Config{}, false},
		{"sqlite", Config{Storage: StorageConfig{Backend: StorageSQLite}}, false},
		{"redis without addr", Config{Storage: StorageConfig{Backend: "redis"}}, false},
		{"redis with addr", Config{
			Storage: StorageConfig{Backend: "Redis"},
			Redis:   RedisConfig{Addr: "localhost:6379"},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.UsesRedis(); got != tt.expected {
				t.Errorf("UsesRedis() = %v, want %v", got, tt.expected)
			}
		})
	}
}
