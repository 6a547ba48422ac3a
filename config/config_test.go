package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, []string{"**"}, cfg.AllowedPaths)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
allowed_paths = ["src/**", "lib/*.go"]
max_files = 50
cache_ttl = "1m"
strict_signatures = true

[bazel]
enabled = false

[log]
level = "debug"
file = "/tmp/codejump.log"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/**", "lib/*.go"}, cfg.AllowedPaths)
	assert.Equal(t, 50, cfg.MaxFiles)
	assert.Equal(t, time.Minute, cfg.CacheTTL.Std())
	assert.Equal(t, 5*time.Second, cfg.ScanCooldown.Std(), "unset keys keep defaults")
	assert.True(t, cfg.StrictSignatures)
	assert.False(t, cfg.Bazel.Enabled)
	assert.Equal(t, "bazel", cfg.Bazel.Binary)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/codejump.log", cfg.Log.File)
}

func TestLoadEmptyAllowlistKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, "allowed_paths = []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.AllowedPaths)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"bad duration", `cache_ttl = "soon"`, ""},
		{"bad toml", `max_files = `, ""},
		{"bad pattern", `allowed_paths = ["[oops"]`, "allowed_paths"},
		{"zero max files", `max_files = 0`, "max_files"},
		{"negative cooldown", `scan_cooldown = "-1s"`, "scan_cooldown"},
		{"unknown level", "[log]\nlevel = \"loud\"", "log.level"},
		{"no bazel binary", "[bazel]\nbinary = \"\"", "bazel.binary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			if tt.key != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.key, verr.Key)
			}
		})
	}
}

func TestValidateCollectsEveryError(t *testing.T) {
	cfg := Default()
	cfg.MaxFiles = 0
	cfg.Concurrency = -1
	cfg.Exclude = []string{"[x"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_files")
	assert.Contains(t, err.Error(), "concurrency")
	assert.Contains(t, err.Error(), "exclude")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
