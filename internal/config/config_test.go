package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaults_AreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

// TestDefaultConfigTemplate_MatchesDefaults keeps the commented template
// and Defaults in sync.
func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &raw))
	for _, section := range []string{"audio", "loader", "cache", "clips", "log", "tracing"} {
		assert.Contains(t, raw, section)
	}

	cfg, _, err := Load(writeConfig(t, DefaultConfigTemplate()))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, _, err := Load(writeConfig(t, `
audio:
  start_muted: true
  backend: offline
clips:
  min_silence: 250ms
log:
  level: debug
`))
	require.NoError(t, err)

	assert.True(t, cfg.Audio.StartMuted)
	assert.Equal(t, "offline", cfg.Audio.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Clips.MinSilence)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SFX_AUDIO_SAMPLE_RATE", "22050")
	t.Setenv("SFX_TRACING_EXPORTER", "stdout")

	cfg, _, err := Load(writeConfig(t, "log:\n  level: info\n"))
	require.NoError(t, err)
	assert.Equal(t, 22050, cfg.Audio.SampleRate)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, v, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, _, err = Load(writeConfig(t, "audio: [not, a, map"))
	require.Error(t, err)

	_, _, err = Load(writeConfig(t, "tracing:\n  exporter: jaeger\n"))
	require.ErrorContains(t, err, "tracing.exporter")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"sample rate", func(c *Config) { c.Audio.SampleRate = 0 }, "audio.sample_rate"},
		{"backend", func(c *Config) { c.Audio.Backend = "alsa" }, "audio.backend"},
		{"max bytes", func(c *Config) { c.Loader.MaxBytes = -1 }, "loader.max_bytes"},
		{"quality", func(c *Config) { c.Loader.ResampleQuality = "ultra" }, "loader.resample_quality"},
		{"threshold", func(c *Config) { c.Clips.ThresholdDB = 3 }, "clips.threshold_db"},
		{"min silence", func(c *Config) { c.Clips.MinSilence = 0 }, "clips.min_silence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".sfx", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigTemplate(), string(data))
}

func TestWatch_AppliesChanges(t *testing.T) {
	path := writeConfig(t, "audio:\n  start_muted: false\n")
	_, v, err := Load(path)
	require.NoError(t, err)

	changed := make(chan Config, 16)
	Watch(v, func(c Config) {
		select {
		case changed <- c:
		default:
		}
	}, nil)

	require.NoError(t, os.WriteFile(path, []byte("audio:\n  start_muted: true\n"), 0644))

	// Editors and os.WriteFile may produce several events, some of which
	// observe a truncated file.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.Audio.StartMuted {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}
