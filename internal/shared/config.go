package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Storage modes for saved playlists.
const (
	StorageRemote = "remote"
	StorageLocal  = "local"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Session  SessionConfig  `toml:"session"`
	Storage  StorageConfig  `toml:"storage"`
	Behavior BehaviorConfig `toml:"behavior"`
	Player   PlayerConfig   `toml:"player"`
	Log      LogConfig      `toml:"log"`
}

// APIConfig contains backend endpoints and request settings.
type APIConfig struct {
	BaseURL           string   `toml:"base_url"`
	AnalyzeURL        string   `toml:"analyze_url"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	UserAgent         string   `toml:"user_agent"`
}

// SessionConfig contains where the login cookie is kept between runs.
type SessionConfig struct {
	CookieFile string `toml:"cookie_file"`
}

// StorageConfig selects where saved playlists live.
//
// Mode "remote" uses the backend; "local" keeps a demo copy in SQLite.
type StorageConfig struct {
	Mode         string `toml:"mode"`
	Driver       string `toml:"driver"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// BehaviorConfig toggles the differences between client variants.
type BehaviorConfig struct {
	RequireAuthForSave bool     `toml:"require_auth_for_save"`
	CaseInsensitiveExt bool     `toml:"case_insensitive_ext"`
	NoticeTTL          Duration `toml:"notice_ttl"`
}

// PlayerConfig contains playback settings.
type PlayerConfig struct {
	Autoplay bool `toml:"autoplay"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Duration wraps [time.Duration] so it can be written as "30s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidConfig, string(text))
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports configuration values the client cannot work with.
func (c *Config) Validate() error {
	switch c.Storage.Mode {
	case StorageRemote, StorageLocal:
	default:
		return fmt.Errorf("%w: storage.mode must be %q or %q, got %q", ErrInvalidConfig, StorageRemote, StorageLocal, c.Storage.Mode)
	}

	switch c.Storage.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("%w: storage.driver must be \"sqlite3\" or \"sqlite\", got %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is empty", ErrInvalidConfig)
	}

	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: api.requests_per_second is negative", ErrInvalidConfig)
	}

	return nil
}
