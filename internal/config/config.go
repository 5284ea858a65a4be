package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Dicklesworthstone/sysgraph/internal/model"
	"github.com/Dicklesworthstone/sysgraph/internal/source"
)

// EnvPrefix prefixes every environment override, e.g. SYSGRAPH_INTERVAL.
const EnvPrefix = "SYSGRAPH"

// Prefill policies for the initial window contents.
const (
	PrefillZero    = "zero"
	PrefillUnknown = "unknown"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config carries runtime options for sysgraph. It is read once at startup.
type Config struct {
	Window     int
	Interval   time.Duration
	CPUWindow  time.Duration
	Fallback   float64
	Prefill    string
	DiskPath   string
	EnableGPU  bool
	NVMLPath   string
	JSON       bool
	JSONStream bool
	LogLevel   string
	LogFile    string
}

func Default() Config {
	return Config{
		Window:    60,
		Interval:  time.Second,
		CPUWindow: source.DefaultCPUWindow,
		Fallback:  0,
		Prefill:   PrefillZero,
		DiskPath:  source.DefaultDiskPath(),
		EnableGPU: true,
		LogLevel:  "info",
	}
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Int("window", d.Window, "number of samples kept per chart")
	fs.Duration("interval", d.Interval, "refresh interval")
	fs.Duration("cpu-window", d.CPUWindow, "CPU measurement interval")
	fs.Float64("fallback", d.Fallback, "value reported when a metric cannot be read")
	fs.String("prefill", d.Prefill, "initial window contents: zero|unknown")
	fs.String("disk-path", d.DiskPath, "filesystem whose usage is charted")
	fs.Bool("gpu", d.EnableGPU, "enable GPU sampling")
	fs.String("nvml-path", d.NVMLPath, "path to the NVML shared library")
	fs.Bool("json", d.JSON, "output one-shot JSON and exit")
	fs.Bool("json-stream", d.JSONStream, "stream NDJSON until interrupted")
	fs.String("log-level", d.LogLevel, "log level: debug|info|warn|error")
	fs.String("log-file", d.LogFile, "write logs to this file")
}

// Load merges defaults, the optional YAML file at path, SYSGRAPH_* environment
// variables and explicitly set flags, in increasing order of precedence.
func Load(fs *pflag.FlagSet, path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := Config{
		Window:     v.GetInt("window"),
		Fallback:   v.GetFloat64("fallback"),
		Prefill:    strings.ToLower(strings.TrimSpace(v.GetString("prefill"))),
		DiskPath:   v.GetString("disk-path"),
		EnableGPU:  v.GetBool("gpu"),
		NVMLPath:   v.GetString("nvml-path"),
		JSON:       v.GetBool("json"),
		JSONStream: v.GetBool("json-stream"),
		LogLevel:   v.GetString("log-level"),
		LogFile:    v.GetString("log-file"),
	}

	var err error
	if cfg.Interval, err = parseDuration(v.GetString("interval")); err != nil {
		return Config{}, fmt.Errorf("%w: interval: %v", ErrInvalid, err)
	}
	if cfg.CPUWindow, err = parseDuration(v.GetString("cpu-window")); err != nil {
		return Config{}, fmt.Errorf("%w: cpu-window: %v", ErrInvalid, err)
	}
	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("window", d.Window)
	v.SetDefault("interval", d.Interval.String())
	v.SetDefault("cpu-window", d.CPUWindow.String())
	v.SetDefault("fallback", d.Fallback)
	v.SetDefault("prefill", d.Prefill)
	v.SetDefault("disk-path", d.DiskPath)
	v.SetDefault("gpu", d.EnableGPU)
	v.SetDefault("nvml-path", d.NVMLPath)
	v.SetDefault("json", d.JSON)
	v.SetDefault("json-stream", d.JSONStream)
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-file", d.LogFile)
}

// parseDuration accepts Go durations and bare numbers of seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	return time.ParseDuration(s + "s")
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Window < 1:
		return fmt.Errorf("%w: window must be at least 1, got %d", ErrInvalid, c.Window)
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalid, c.Interval)
	case c.CPUWindow <= 0 || c.CPUWindow >= c.Interval:
		return fmt.Errorf("%w: cpu-window must be between 0 and interval (%s), got %s", ErrInvalid, c.Interval, c.CPUWindow)
	case c.Fallback < 0 || c.Fallback > 100:
		return fmt.Errorf("%w: fallback must be within [0, 100], got %g", ErrInvalid, c.Fallback)
	case c.Prefill != PrefillZero && c.Prefill != PrefillUnknown:
		return fmt.Errorf("%w: prefill must be %q or %q, got %q", ErrInvalid, PrefillZero, PrefillUnknown, c.Prefill)
	case c.JSON && c.JSONStream:
		return fmt.Errorf("%w: --json and --json-stream are mutually exclusive", ErrInvalid)
	}
	return nil
}

// PrefillValue is the value every window slot starts with.
func (c Config) PrefillValue() float64 {
	if c.Prefill == PrefillUnknown {
		return model.Unknown
	}
	return 0
}
