// Package config handles entryscrape configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/matsen/entryscrape/internal/network"
	"github.com/matsen/entryscrape/internal/recognizer"
	"github.com/matsen/entryscrape/internal/scrapers"
)

// Config holds the settings of the scrape service and its collaborators.
type Config struct {
	RecognizerURL     string        `yaml:"recognizer_url,omitempty"`
	RecognizerTimeout time.Duration `yaml:"recognizer_timeout,omitempty"`
	HTTPTimeout       time.Duration `yaml:"http_timeout,omitempty"`
	HTTPRetries       int           `yaml:"http_retries"`
	UserAgent         string        `yaml:"user_agent,omitempty"`
	Concurrency       int           `yaml:"concurrency"` // 0 = unbounded
	LogLevel          string        `yaml:"log_level,omitempty"`
	LibraryRoot       string        `yaml:"library_root,omitempty"` // resolves relative file payloads
	TempDir           string        `yaml:"temp_dir,omitempty"`     // receives downloaded PDFs
	DisabledScrapers  []string      `yaml:"disabled_scrapers,omitempty"`
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		RecognizerURL:     recognizer.DefaultURL,
		RecognizerTimeout: recognizer.DefaultTimeout,
		HTTPTimeout:       network.DefaultTimeout,
		HTTPRetries:       1,
		UserAgent:         network.DefaultUserAgent,
		LogLevel:          zerolog.LevelInfoValue,
	}
}

// Validate checks ranges and scraper names.
func (c *Config) Validate() error {
	var errs []error
	if c.RecognizerURL == "" {
		errs = append(errs, fmt.Errorf("%w: recognizer_url is empty", ErrInvalidConfig))
	}
	if c.RecognizerTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: recognizer_timeout must be positive, got %s", ErrInvalidConfig, c.RecognizerTimeout))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: http_timeout must be positive, got %s", ErrInvalidConfig, c.HTTPTimeout))
	}
	if c.HTTPRetries < 0 {
		errs = append(errs, fmt.Errorf("%w: http_retries must not be negative, got %d", ErrInvalidConfig, c.HTTPRetries))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: concurrency must not be negative, got %d", ErrInvalidConfig, c.Concurrency))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err))
	}
	for _, name := range c.DisabledScrapers {
		if !scrapers.IsKnown(name) {
			errs = append(errs, fmt.Errorf("%w: unknown scraper %q in disabled_scrapers (valid: %v)", ErrInvalidConfig, name, scrapers.Names()))
		}
	}
	if err := ValidateDir(c.LibraryRoot); err != nil {
		errs = append(errs, fmt.Errorf("%w: library_root: %v", ErrInvalidConfig, err))
	}
	if err := ValidateDir(c.TempDir); err != nil {
		errs = append(errs, fmt.Errorf("%w: temp_dir: %v", ErrInvalidConfig, err))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, info when unset.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// ValidateDir checks that path, when set, is an existing directory.
func ValidateDir(path string) error {
	if path == "" {
		return nil
	}

	expanded := ExpandPath(path)
	info, err := os.Stat(expanded)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expanded)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", expanded)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
