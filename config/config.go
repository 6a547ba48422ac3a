// Package config loads .codejump.toml from the workspace root.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file looked up in the workspace root.
const FileName = ".codejump.toml"

// Duration is a time.Duration written as a string ("30s", "5m").
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Bazel struct {
	Enabled bool   `toml:"enabled"`
	Binary  string `toml:"binary"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Config is the parsed configuration file.
type Config struct {
	AllowedPaths     []string `toml:"allowed_paths"`
	Exclude          []string `toml:"exclude"`
	MaxFiles         int      `toml:"max_files"`
	CacheTTL         Duration `toml:"cache_ttl"`
	ScanCooldown     Duration `toml:"scan_cooldown"`
	StaleAfter       Duration `toml:"stale_after"`
	Concurrency      int      `toml:"concurrency"`
	StrictSignatures bool     `toml:"strict_signatures"`
	SyntaxAware      bool     `toml:"syntax_aware"`
	Bazel            Bazel    `toml:"bazel"`
	Log              Log      `toml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		AllowedPaths: []string{"**"},
		Exclude:      []string{"**/node_modules/**"},
		MaxFiles:     1000,
		CacheTTL:     Duration(30 * time.Second),
		ScanCooldown: Duration(5 * time.Second),
		StaleAfter:   Duration(5 * time.Minute),
		Concurrency:  8,
		Bazel:        Bazel{Enabled: true, Binary: "bazel"},
		Log:          Log{Level: "info"},
	}
}

// Load reads the file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ValidationError names the offending key.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// Validate checks patterns, sizes, durations and the log level.
func (c *Config) Validate() error {
	var errs []error
	for _, p := range c.AllowedPaths {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, &ValidationError{"allowed_paths", fmt.Sprintf("invalid pattern %q", p)})
		}
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, &ValidationError{"exclude", fmt.Sprintf("invalid pattern %q", p)})
		}
	}
	if c.MaxFiles <= 0 {
		errs = append(errs, &ValidationError{"max_files", "must be positive"})
	}
	if c.Concurrency <= 0 {
		errs = append(errs, &ValidationError{"concurrency", "must be positive"})
	}
	durations := []struct {
		key string
		d   Duration
	}{
		{"cache_ttl", c.CacheTTL},
		{"scan_cooldown", c.ScanCooldown},
		{"stale_after", c.StaleAfter},
	}
	for _, v := range durations {
		if v.d <= 0 {
			errs = append(errs, &ValidationError{v.key, "must be positive"})
		}
	}
	if c.Bazel.Enabled && c.Bazel.Binary == "" {
		errs = append(errs, &ValidationError{"bazel.binary", "must be set when bazel is enabled"})
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &ValidationError{"log.level", err.Error()})
	}
	return errors.Join(errs...)
}

// ParseLevel maps debug, info, warn and error to slog levels. The empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
