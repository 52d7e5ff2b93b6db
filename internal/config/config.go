// Package config resolves the server's runtime configuration from a file,
// environment variables, and compiled-in defaults, the way the teacher's
// internal/config package layers a YAML file under DESKBRIDGE_-prefixed
// env overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// CaptureRect mirrors desktop.Rect without importing internal/desktop,
// keeping this package free of capture/codec concerns.
type CaptureRect struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
	W int `mapstructure:"w"`
	H int `mapstructure:"h"`
}

// Config is the fully-resolved server configuration. Every field named in
// the external configuration surface is a first-class struct field so
// viper.Unmarshal populates it directly.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	WebRoot    string `mapstructure:"web_root"`

	CaptureRect      CaptureRect `mapstructure:"capture_rect"`
	FPS              int         `mapstructure:"fps"`
	VideoBitrate     int         `mapstructure:"video_bitrate"`
	GOPSize          int         `mapstructure:"gop_size"`
	ConverterThreads int         `mapstructure:"converter_threads"`

	AudioSampleRate   int `mapstructure:"audio_sample_rate"`
	AudioChannels     int `mapstructure:"audio_channels"`
	AudioFrameSamples int `mapstructure:"audio_frame_samples"`
	OpusBitrate       int `mapstructure:"opus_bitrate"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// Default returns the compiled-in defaults from spec.md §6, applied before
// any file or environment overrides are layered on top.
func Default() *Config {
	return &Config{
		ListenAddr:        ":8090",
		WebRoot:           ".",
		CaptureRect:       CaptureRect{X: 0, Y: 0, W: 1920, H: 1080},
		FPS:               60,
		VideoBitrate:      6_000_000,
		GOPSize:           120,
		ConverterThreads:  8,
		AudioSampleRate:   48000,
		AudioChannels:     2,
		AudioFrameSamples: 960,
		OpusBitrate:       128_000,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load resolves configuration from cfgFile (if non-empty), then
// "deskbridge.yaml" in the current directory, then DESKBRIDGE_-prefixed
// environment variables, all layered on top of Default().
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("deskbridge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("DESKBRIDGE")
	// Unmarshal only sees keys viper already knows, and AutomaticEnv does not
	// register any, so bind each key to its DESKBRIDGE_ variable explicitly.
	for _, key := range []string{
		"listen_addr", "web_root", "capture_rect.x", "capture_rect.y", "capture_rect.w", "capture_rect.h",
		"fps", "video_bitrate", "gop_size", "converter_threads", "audio_sample_rate", "audio_channels",
		"audio_frame_samples", "opus_bitrate", "log_level", "log_format", "log_file",
	} {
		_ = v.BindEnv(key, "DESKBRIDGE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would make a Session impossible to
// construct rather than letting the zero value propagate into a division
// or a zero-sized worker pool.
func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.CaptureRect.W <= 0 || c.CaptureRect.H <= 0 {
		return fmt.Errorf("capture_rect must have positive width and height, got %dx%d", c.CaptureRect.W, c.CaptureRect.H)
	}
	if c.ConverterThreads <= 0 {
		return fmt.Errorf("converter_threads must be positive, got %d", c.ConverterThreads)
	}
	if c.VideoBitrate <= 0 {
		return fmt.Errorf("video_bitrate must be positive, got %d", c.VideoBitrate)
	}
	return nil
}
