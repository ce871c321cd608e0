package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all engine configuration
type Config struct {
	// Playback settings
	Playback PlaybackConfig `yaml:"playback"`

	// Design-space settings for text authoring
	Design DesignConfig `yaml:"design"`

	// Media synchronization settings
	Sync SyncConfig `yaml:"sync"`

	// Text rendering settings
	Text TextConfig `yaml:"text"`

	// Export encoding settings
	Export ExportConfig `yaml:"export"`
}

type PlaybackConfig struct {
	FPS float64 `yaml:"fps"`
}

type DesignConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type SyncConfig struct {
	// DriftToleranceMs is the maximum divergence between a handle's
	// position and the timeline before a corrective seek is issued.
	DriftToleranceMs int `yaml:"drift_tolerance_ms"`
	MinClipLengthMs  int `yaml:"min_clip_length_ms"`
}

type TextConfig struct {
	FontPath  string `yaml:"font_path"`
	PaddingPx int    `yaml:"padding_px"`
}

type ExportConfig struct {
	VideoCodec   string `yaml:"video_codec"`
	AudioCodec   string `yaml:"audio_codec"`
	CRF          int    `yaml:"crf"`
	Preset       string `yaml:"preset"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

// DriftTolerance returns the sync drift tolerance as a duration
func (c *Config) DriftTolerance() time.Duration {
	return time.Duration(c.Sync.DriftToleranceMs) * time.Millisecond
}

// MinClipLength returns the minimum clip duration quantum
func (c *Config) MinClipLength() time.Duration {
	return time.Duration(c.Sync.MinClipLengthMs) * time.Millisecond
}

// FrameInterval returns the duration of one tick at the configured FPS
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.Playback.FPS)
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Default returns the stock configuration
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			FPS: 30,
		},
		Design: DesignConfig{
			Width:  1080,
			Height: 1920,
		},
		Sync: SyncConfig{
			DriftToleranceMs: 150,
			MinClipLengthMs:  100,
		},
		Text: TextConfig{
			FontPath:  "",
			PaddingPx: 8,
		},
		Export: ExportConfig{
			VideoCodec:   "libx264",
			AudioCodec:   "aac",
			CRF:          23,
			Preset:       "fast",
			AudioBitrate: "192k",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./reelcore.yaml",
		"./reelcore.yml",
		filepath.Join(os.Getenv("HOME"), ".reelcore", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
