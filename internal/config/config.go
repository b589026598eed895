package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Batch size and concurrency match the
// reference crawler this tool replaces.
const (
	// DefaultRootDir is the directory all crawl state is stored under.
	DefaultRootDir = "run"

	// DefaultOrigin is the site origin page identifiers are resolved
	// against.
	DefaultOrigin = "https://open.spotify.com/"

	// DefaultSeedPage is the well-known page used to bootstrap an empty
	// frontier.
	DefaultSeedPage = "track/6fxbtIuYVYl37ynRqEfMcc"

	// DefaultBatchSize caps the number of items processed per queue drain
	// step. Large batches amortize transaction overhead; 4096 keeps each
	// round's memory footprint bounded.
	DefaultBatchSize = 4096

	// DefaultConcurrency caps the number of in-flight fetches per batch.
	DefaultConcurrency = 64

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultTransientPause is how long to pause after a transient fetch
	// failure (rate limit, server overload).
	DefaultTransientPause = 100 * time.Millisecond

	// DefaultIdlePause is how long the pipeline sleeps between rounds that
	// found no work, so an empty crawl does not spin.
	DefaultIdlePause = time.Second

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// AppName is the application name used for XDG directory paths.
	AppName = "spotcrawler"
)

// Config holds all crawler configuration.
type Config struct {
	// RootDir is the root directory for all persisted crawl state.
	RootDir string `yaml:"root"`

	// Origin is the site origin page identifiers are resolved against.
	Origin string `yaml:"origin"`

	// SeedPage bootstraps an empty frontier at startup.
	SeedPage string `yaml:"seed"`

	// BatchSize caps items per queue drain step.
	BatchSize int `yaml:"batch_size"`

	// Concurrency caps in-flight fetches per batch.
	Concurrency int `yaml:"concurrency"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout"`

	// TransientPause is the pause after a transient fetch failure.
	TransientPause time.Duration `yaml:"transient_pause"`

	// IdlePause is the sleep between rounds that found no work.
	IdlePause time.Duration `yaml:"idle_pause"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `yaml:"user_agent"`

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64 `yaml:"max_body_size"`

	// Verbose enables debug-level log output.
	Verbose bool `yaml:"-"`
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		RootDir:        DefaultRootDir,
		Origin:         DefaultOrigin,
		SeedPage:       DefaultSeedPage,
		BatchSize:      DefaultBatchSize,
		Concurrency:    DefaultConcurrency,
		Timeout:        DefaultTimeout,
		TransientPause: DefaultTransientPause,
		IdlePause:      DefaultIdlePause,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
	}
}

// XDGConfigDir returns the XDG config directory for the crawler.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag parsing, before any crawling begins.
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return ErrNoRootDir
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	u, err := url.Parse(c.Origin)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ErrInvalidOrigin
	}
	if c.SeedPage == "" {
		return ErrNoSeedPage
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.TransientPause < 0 {
		return ErrInvalidTransientPause
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
