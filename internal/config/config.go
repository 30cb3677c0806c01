package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/essai/internal/playback"
)

// Environment variables overriding the config files.
const (
	EnvAPIURL    = "ESSAI_API_URL"
	EnvAPIToken  = "ESSAI_API_TOKEN"
	EnvRedisAddr = "ESSAI_REDIS_ADDR"
)

// Storage backends for the playback position.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	API    APIConfig    `koanf:"api"`
	Player PlayerConfig `koanf:"player"`
	Embed  EmbedConfig  `koanf:"embed"`

	// Position storage; sqlite is always used for settings and the token
	Storage StorageConfig `koanf:"storage"`
	Redis   RedisConfig   `koanf:"redis"`

	// Last.fm scrobbling (enables scrobbling when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	Log           LogConfig    `koanf:"log"`
	Notifications ToggleConfig `koanf:"notifications"`
	MPRIS         ToggleConfig `koanf:"mpris"`
}

// APIConfig holds the catalog server settings.
type APIConfig struct {
	BaseURL   string        `koanf:"base_url"`   // e.g., "http://localhost:8000/api"
	Token     string        `koanf:"token"`      // overrides the stored login token
	Timeout   time.Duration `koanf:"timeout"`    // per request (default: 15s)
	RateLimit float64       `koanf:"rate_limit"` // requests per second (default: 10)
}

// PlayerConfig holds the playback timings.
type PlayerConfig struct {
	LoadTimeout        time.Duration `koanf:"load_timeout"`         // default: 10s
	RetryDelay         time.Duration `koanf:"retry_delay"`          // default: 1s
	PersistInterval    time.Duration `koanf:"persist_interval"`     // default: 5s
	RestartThreshold   time.Duration `koanf:"restart_threshold"`    // default: 3s
	PollInterval       time.Duration `koanf:"poll_interval"`        // embedded player polling (default: 100ms)
	TimeUpdateInterval time.Duration `koanf:"time_update_interval"` // stream position events (default: 250ms)
	MaxDownloadMB      int           `koanf:"max_download_mb"`      // default: 100
}

// EmbedConfig holds the embedded video settings.
type EmbedConfig struct {
	YtdlpFormat string `koanf:"ytdlp_format"` // yt-dlp format selector
	Proxy       string `koanf:"proxy"`
}

// StorageConfig selects where the playback position lives.
type StorageConfig struct {
	Backend string `koanf:"backend"` // "sqlite" or "redis" (default: "sqlite")
	Path    string `koanf:"path"`    // sqlite database (default: XDG data dir)
}

// RedisConfig holds the shared position store settings.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Key      string `koanf:"key"`
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// LogConfig holds the log file settings.
type LogConfig struct {
	Level      string `koanf:"level"`        // "debug", "info", "warn", "error" (default: "info")
	File       string `koanf:"file"`         // default: XDG state dir
	MaxSizeMB  int    `koanf:"max_size_mb"`  // default: 10
	MaxBackups int    `koanf:"max_backups"`  // default: 3
	MaxAgeDays int    `koanf:"max_age_days"` // default: 28
}

// ToggleConfig is a feature switch.
type ToggleConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// IsEnabled reports the switch, defaulting to true.
func (t ToggleConfig) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

func Load() (*Config, error) {
	return load(getConfigPaths())
}

func load(configPaths []string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()
	applyEnv(cfg)

	cfg.API.BaseURL = strings.TrimSuffix(cfg.API.BaseURL, "/")

	if cfg.Storage.Path != "" {
		cfg.Storage.Path = expandPath(cfg.Storage.Path)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		cfg.API.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvAPIToken); ok && v != "" {
		cfg.API.Token = v
	}
	if v, ok := os.LookupEnv(EnvRedisAddr); ok && v != "" {
		cfg.Redis.Addr = v
	}
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/essai/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "essai", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm API credentials are configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// UsesRedis reports whether positions are kept in Redis.
func (c *Config) UsesRedis() bool {
	return strings.EqualFold(c.Storage.Backend, StorageRedis) && c.Redis.Addr != ""
}

// GetAPIConfig returns the API config with defaults applied.
func (c *Config) GetAPIConfig() APIConfig {
	api := c.API
	if api.BaseURL == "" {
		api.BaseURL = "http://localhost:8000/api"
	}
	if api.Timeout <= 0 {
		api.Timeout = 15 * time.Second
	}
	if api.RateLimit <= 0 {
		api.RateLimit = 10
	}
	return api
}

// GetPlayerConfig returns the player config with defaults applied and
// values clamped to sane ranges.
func (c *Config) GetPlayerConfig() PlayerConfig {
	p := c.Player
	d := playback.DefaultConfig()

	if p.LoadTimeout <= 0 {
		p.LoadTimeout = d.LoadTimeout
	}
	if p.RetryDelay <= 0 {
		p.RetryDelay = d.RetryDelay
	}
	if p.PersistInterval <= 0 {
		p.PersistInterval = d.PersistInterval
	}
	if p.RestartThreshold <= 0 {
		p.RestartThreshold = d.RestartThreshold
	}
	if p.PollInterval <= 0 {
		p.PollInterval = 100 * time.Millisecond
	}
	p.PollInterval = max(p.PollInterval, 10*time.Millisecond)
	if p.TimeUpdateInterval <= 0 {
		p.TimeUpdateInterval = 250 * time.Millisecond
	}
	p.TimeUpdateInterval = max(p.TimeUpdateInterval, 10*time.Millisecond)
	if p.MaxDownloadMB <= 0 {
		p.MaxDownloadMB = 100
	}
	p.MaxDownloadMB = min(p.MaxDownloadMB, 2048)

	return p
}

// Playback returns the controller timings.
func (p PlayerConfig) Playback() playback.Config {
	cfg := playback.DefaultConfig()
	cfg.LoadTimeout = p.LoadTimeout
	cfg.RetryDelay = p.RetryDelay
	cfg.PersistInterval = p.PersistInterval
	cfg.RestartThreshold = p.RestartThreshold
	return cfg
}

// MaxDownloadBytes returns the download cap in bytes.
func (p PlayerConfig) MaxDownloadBytes() int64 {
	return int64(p.MaxDownloadMB) << 20
}

// GetLogConfig returns the log config with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	l := c.Log
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
		l.Level = strings.ToLower(l.Level)
	default:
		l.Level = "info"
	}
	if l.MaxSizeMB <= 0 {
		l.MaxSizeMB = 10
	}
	if l.MaxBackups <= 0 {
		l.MaxBackups = 3
	}
	if l.MaxAgeDays <= 0 {
		l.MaxAgeDays = 28
	}
	return l
}
