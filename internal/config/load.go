package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "entryscrape"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "ENTRYSCRAPE_"
)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/entryscrape/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file, then .env files (default ".env"), then
// ENTRYSCRAPE_* environment overrides. Missing files are not an error.
func Load(dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		// godotenv never overrides variables already set.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return LoadFile(Path(), os.LookupEnv)
}

// LoadFile reads the YAML file at path over the defaults and applies
// overrides from lookup. The result is validated.
func LoadFile(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if lookup != nil {
		if err := cfg.applyEnv(lookup); err != nil {
			return nil, err
		}
	}

	cfg.LibraryRoot = ExpandPath(cfg.LibraryRoot)
	cfg.TempDir = ExpandPath(cfg.TempDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("RECOGNIZER_URL", &c.RecognizerURL)
	str("USER_AGENT", &c.UserAgent)
	str("LOG_LEVEL", &c.LogLevel)
	str("LIBRARY_ROOT", &c.LibraryRoot)
	str("TEMP_DIR", &c.TempDir)
	if v, ok := lookup(EnvPrefix + "DISABLED_SCRAPERS"); ok {
		c.DisabledScrapers = splitList(v)
	}

	return errors.Join(
		dur("RECOGNIZER_TIMEOUT", &c.RecognizerTimeout),
		dur("HTTP_TIMEOUT", &c.HTTPTimeout),
		num("HTTP_RETRIES", &c.HTTPRetries),
		num("CONCURRENCY", &c.Concurrency),
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
