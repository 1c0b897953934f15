// Package config provides configuration types, defaults and loading for sfx.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DefaultPath is where `sfx init` writes the config and where Load looks
// when no path is given.
const DefaultPath = ".sfx/config.yaml"

// Config holds all configuration options for sfx.
type Config struct {
	Audio   AudioConfig   `mapstructure:"audio"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Clips   ClipsConfig   `mapstructure:"clips"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// AudioConfig selects the output context.
type AudioConfig struct {
	SampleRate int    `mapstructure:"sample_rate"`
	StartMuted bool   `mapstructure:"start_muted"`
	Backend    string `mapstructure:"backend"` // device or offline
}

// LoaderConfig bounds asset fetching and decoding.
type LoaderConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxBytes        int64         `mapstructure:"max_bytes"`
	ResampleQuality string        `mapstructure:"resample_quality"` // fast, balanced or best
}

// CacheConfig controls the decoded-asset cache.
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// ClipsConfig holds silence-detection settings for clip sheets.
type ClipsConfig struct {
	ThresholdDB float64       `mapstructure:"threshold_db"`
	MinSilence  time.Duration `mapstructure:"min_silence"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	Exporter string `mapstructure:"exporter"` // none, stdout or otlp
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate: 44100,
			Backend:    "device",
		},
		Loader: LoaderConfig{
			Timeout:         30 * time.Second,
			MaxBytes:        64 << 20,
			ResampleQuality: "balanced",
		},
		Cache: CacheConfig{
			TTL:             10 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Clips: ClipsConfig{
			ThresholdDB: -35,
			MinSilence:  400 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Tracing: TracingConfig{
			Exporter: "none",
			Endpoint: "localhost:4317",
			Insecure: true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.start_muted", d.Audio.StartMuted)
	v.SetDefault("audio.backend", d.Audio.Backend)
	v.SetDefault("loader.timeout", d.Loader.Timeout)
	v.SetDefault("loader.max_bytes", d.Loader.MaxBytes)
	v.SetDefault("loader.resample_quality", d.Loader.ResampleQuality)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("clips.threshold_db", d.Clips.ThresholdDB)
	v.SetDefault("clips.min_silence", d.Clips.MinSilence)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.insecure", d.Tracing.Insecure)
}

// Load reads configuration from path, the environment (SFX_ prefix, e.g.
// SFX_AUDIO_START_MUTED) and defaults. With an empty path DefaultPath is
// used if it exists. The returned viper instance can be passed to Watch.
func Load(path string) (Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SFX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Dir(DefaultPath))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, v, nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Audio.SampleRate <= 0:
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	case c.Audio.Backend != "device" && c.Audio.Backend != "offline":
		return fmt.Errorf("audio.backend must be device or offline, got %q", c.Audio.Backend)
	case c.Loader.MaxBytes < 0:
		return fmt.Errorf("loader.max_bytes must not be negative, got %d", c.Loader.MaxBytes)
	case c.Clips.ThresholdDB >= 0:
		return fmt.Errorf("clips.threshold_db must be below 0, got %v", c.Clips.ThresholdDB)
	case c.Clips.MinSilence <= 0:
		return fmt.Errorf("clips.min_silence must be positive, got %v", c.Clips.MinSilence)
	}
	switch c.Loader.ResampleQuality {
	case "fast", "balanced", "best":
	default:
		return fmt.Errorf("loader.resample_quality must be fast, balanced or best, got %q", c.Loader.ResampleQuality)
	}
	switch c.Tracing.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be none, stdout or otlp, got %q", c.Tracing.Exporter)
	}
	return nil
}

// Watch re-reads the config file whenever it changes and passes valid
// results to fn. Invalid edits are reported through onErr and skipped.
func Watch(v *viper.Viper, fn func(Config), onErr func(error)) {
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		fn(cfg)
	})
	v.WatchConfig()
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# sfx configuration
# Every key can be overridden from the environment, e.g. SFX_AUDIO_START_MUTED=true

audio:
  sample_rate: 44100
  start_muted: false   # begin with the mute switch off
  backend: device      # device (speakers) or offline (silent, clocked by rendering)

loader:
  timeout: 30s
  max_bytes: 67108864  # refuse assets larger than 64 MiB
  resample_quality: balanced  # fast, balanced or best

# Decoded assets are kept for reuse between plays
cache:
  ttl: 10m
  cleanup_interval: 1m

# Silence detection used by 'sfx clip analyze'
clips:
  threshold_db: -35
  min_silence: 400ms

log:
  level: warn    # debug, info, warn or error
  format: text   # text or json

tracing:
  exporter: none           # none, stdout or otlp
  endpoint: localhost:4317 # otlp gRPC endpoint
  insecure: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
