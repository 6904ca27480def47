package config

import (
	"fmt"
	"strings"
	"time"

	"crondesc/internal/storage"
	logx "crondesc/pkg/logx"
)

// Config is the on-disk configuration for both the CLI and the bot.
// The file may be JSON or YAML; unknown keys are rejected.
type Config struct {
	Logging  LoggingConfig  `json:"logging"`
	Storage  *StorageConfig `json:"storage,omitempty"`
	Telegram TelegramConfig `json:"telegram"`
	Bot      BotConfig      `json:"bot"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig selects the translation history backend.
//
// Example:
//
//	storage: { driver: sqlite, path: ./crondesc.db, busy_timeout: 2s }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type TelegramConfig struct {
	Token string `json:"token"`
	// PollTimeout is a Go duration string (e.g. "10s").
	PollTimeout string `json:"poll_timeout"`
	// AllowedUserIDs restricts who may talk to the bot. Empty allows everyone.
	AllowedUserIDs []int64 `json:"allowed_user_ids,omitempty"`
}

// BotConfig tunes the chat front-end. Zero fields take defaults:
//   - rate_per_min: 20
//   - burst: 5
//   - preview_runs: 3
//   - history_size: 10
type BotConfig struct {
	RatePerMin  int `json:"rate_per_min,omitempty"`
	Burst       int `json:"burst,omitempty"`
	PreviewRuns int `json:"preview_runs,omitempty"`
	HistorySize int `json:"history_size,omitempty"`
}

const (
	defaultRatePerMin  = 20
	defaultBurst       = 5
	defaultPreviewRuns = 3
	defaultHistorySize = 10
	defaultPollTimeout = 10 * time.Second
)

// WithDefaults returns b with zero fields replaced by defaults.
func (b BotConfig) WithDefaults() BotConfig {
	if b.RatePerMin <= 0 {
		b.RatePerMin = defaultRatePerMin
	}
	if b.Burst <= 0 {
		b.Burst = defaultBurst
	}
	if b.PreviewRuns <= 0 {
		b.PreviewRuns = defaultPreviewRuns
	}
	if b.HistorySize <= 0 {
		b.HistorySize = defaultHistorySize
	}
	return b
}

// PollTimeoutOrDefault parses telegram.poll_timeout.
func (t TelegramConfig) PollTimeoutOrDefault() (time.Duration, error) {
	return ParseDurationOrDefault("telegram.poll_timeout", t.PollTimeout, defaultPollTimeout)
}

// LogConfig maps the logging section to logx.
func (c *Config) LogConfig() logx.Config {
	if c == nil {
		return logx.Config{Level: "info", Console: true}
	}
	return logx.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File:    logx.FileConfig{Enabled: c.Logging.File.Enabled, Path: c.Logging.File.Path},
	}
}

// StorageSettings maps the storage section to storage.Config.
// A missing section disables storage.
func (c *Config) StorageSettings() (storage.Config, error) {
	if c == nil || c.Storage == nil {
		return storage.Config{}, nil
	}
	bt, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Driver:      c.Storage.Driver,
		Path:        c.Storage.Path,
		BusyTimeout: bt,
	}, nil
}

// Validate checks values the JSON decoder cannot.
func Validate(c *Config) error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.Storage != nil {
		switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
		case "", "none", "file", "sqlite", "sqlite3":
		default:
			return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
		}
		if _, err := c.StorageSettings(); err != nil {
			return err
		}
	}
	if _, err := c.Telegram.PollTimeoutOrDefault(); err != nil {
		return err
	}
	if c.Bot.RatePerMin < 0 || c.Bot.Burst < 0 || c.Bot.PreviewRuns < 0 || c.Bot.HistorySize < 0 {
		return fmt.Errorf("bot: limits must be >= 0")
	}
	return nil
}

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}
