// Package config loads shiftdash settings from the environment, optionally
// seeded from .env files in the working directory.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/alexanderramin/shiftdash/internal/api"
	"github.com/alexanderramin/shiftdash/internal/browser"
)

// EnvFiles are loaded in order when present. Variables already set in the
// process environment win.
var EnvFiles = []string{".env", ".env.local"}

// Config is the full runtime configuration.
type Config struct {
	APIURL       string        `env:"SHIFTDASH_API_URL" envDefault:"http://localhost:8000"`
	Timeout      time.Duration `env:"SHIFTDASH_TIMEOUT" envDefault:"15s"`
	MaxRetries   int           `env:"SHIFTDASH_MAX_RETRIES" envDefault:"2"`
	PageSize     int           `env:"SHIFTDASH_PAGE_SIZE" envDefault:"10"`
	Debounce     time.Duration `env:"SHIFTDASH_DEBOUNCE" envDefault:"500ms"`
	UploadSettle time.Duration `env:"SHIFTDASH_UPLOAD_SETTLE" envDefault:"2s"`
	DBPath       string        `env:"SHIFTDASH_DB"`
	LogLevel     string        `env:"SHIFTDASH_LOG_LEVEL" envDefault:"warn"`
	LogCalls     bool          `env:"SHIFTDASH_LOG_CALLS" envDefault:"false"`
	MetricsAddr  string        `env:"SHIFTDASH_METRICS_ADDR"`
	ExportDir    string        `env:"SHIFTDASH_EXPORT_DIR" envDefault:"."`
}

// LoadEnvFiles loads whichever of files exist and returns how many did.
func LoadEnvFiles(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads .env files and the process environment.
func Load() (*Config, error) {
	if _, err := LoadEnvFiles(EnvFiles); err != nil {
		return nil, errors.Wrap(err, "loading env files")
	}
	return parse(env.Options{})
}

// FromMap builds a Config from an explicit variable map, ignoring the
// process environment. Used by tests.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, errors.Wrap(err, "parsing environment")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultDBPath is ~/.shiftdash/session.db, falling back to the working
// directory when no home directory is known.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".shiftdash", "session.db")
	}
	return filepath.Join(home, ".shiftdash", "session.db")
}

// Validate checks the settings for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("SHIFTDASH_API_URL must not be empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return errors.Errorf("SHIFTDASH_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if !slices.Contains(browser.PageSizes, c.PageSize) {
		return errors.Errorf("SHIFTDASH_PAGE_SIZE must be one of %v, got %d", browser.PageSizes, c.PageSize)
	}
	if c.Timeout <= 0 {
		return errors.Errorf("SHIFTDASH_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return errors.Errorf("SHIFTDASH_MAX_RETRIES must be non-negative, got %d", c.MaxRetries)
	}
	if c.Debounce < 0 || c.UploadSettle < 0 {
		return errors.New("SHIFTDASH_DEBOUNCE and SHIFTDASH_UPLOAD_SETTLE must not be negative")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "SHIFTDASH_LOG_LEVEL")
	}
	return nil
}

// API returns the client settings.
func (c *Config) API() api.Config {
	return api.Config{
		BaseURL:    strings.TrimRight(c.APIURL, "/"),
		Timeout:    c.Timeout,
		MaxRetries: c.MaxRetries,
	}
}

// Browser returns record browser options without clock or logger.
func (c *Config) Browser() browser.Options {
	return browser.Options{
		PageSize:     c.PageSize,
		Debounce:     c.Debounce,
		UploadSettle: c.UploadSettle,
	}
}
