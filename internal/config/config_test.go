package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/sysgraph/internal/model"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("sysgraph", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 60, cfg.Window)
	assert.Equal(t, time.Second, cfg.Interval)
	assert.Equal(t, 100*time.Millisecond, cfg.CPUWindow)
	assert.Equal(t, 0.0, cfg.PrefillValue())
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load(newFlags(t, "--window=5", "--interval=100ms", "--cpu-window=20ms", "--gpu=false", "--prefill=unknown"), "")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Window)
	assert.Equal(t, 100*time.Millisecond, cfg.Interval)
	assert.Equal(t, 20*time.Millisecond, cfg.CPUWindow)
	assert.False(t, cfg.EnableGPU)
	assert.True(t, model.IsUnknown(cfg.PrefillValue()))
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SYSGRAPH_INTERVAL", "2")
	t.Setenv("SYSGRAPH_GPU", "0")
	t.Setenv("SYSGRAPH_DISK_PATH", "/data")

	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.False(t, cfg.EnableGPU)
	assert.Equal(t, "/data", cfg.DiskPath)
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv("SYSGRAPH_WINDOW", "10")
	cfg, err := Load(newFlags(t, "--window=20"), "")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Window)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: 30\ninterval: 500ms\nfallback: 1\n"), 0o644))

	cfg, err := Load(newFlags(t), path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Window)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.Equal(t, 1.0, cfg.Fallback)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(newFlags(t), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.Window = 0 }},
		{"zero interval", func(c *Config) { c.Interval = 0 }},
		{"cpu window too long", func(c *Config) { c.CPUWindow = c.Interval }},
		{"fallback out of range", func(c *Config) { c.Fallback = 101 }},
		{"bad prefill", func(c *Config) { c.Prefill = "nan" }},
		{"both json modes", func(c *Config) { c.JSON, c.JSONStream = true, true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLoadRejectsBadInterval(t *testing.T) {
	t.Setenv("SYSGRAPH_INTERVAL", "soon")
	_, err := Load(newFlags(t), "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = parseDuration("250ms")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}
