// SPDX-License-Identifier: EPL-2.0

// Package config loads the command line tool configuration from a YAML
// file, an optional .env file and AUDIOLOADER_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/ik5/audioloader"
	"github.com/ik5/audioloader/audio"
	"github.com/ik5/audioloader/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const EnvPrefix = "AUDIOLOADER_"

// Config is the full tool configuration.
type Config struct {
	Loader audioloader.Config `yaml:"loader"`
	Decode DecodeConfig       `yaml:"decode"`
	Log    logger.Config      `yaml:"log"`
}

// DecodeConfig tunes decode.Decoder.
type DecodeConfig struct {
	// Quality is "cubic" (default) or "high".
	Quality    string `yaml:"quality,omitempty"`
	BufferSize int    `yaml:"buffer_size,omitempty"`
}

// ResampleQuality parses Quality.
func (d DecodeConfig) ResampleQuality() (audio.Quality, error) {
	return audio.ParseQuality(d.Quality)
}

func Default() *Config {
	return &Config{
		Loader: audioloader.Config{
			TargetSampleRate: audioloader.DefaultTargetSampleRate,
			AccessPaths:      audioloader.DefaultAccessPaths,
		},
		Decode: DecodeConfig{
			Quality:    audio.QualityCubic.String(),
			BufferSize: audio.DefaultBufSize,
		},
		Log: logger.Config{Level: "info"},
	}
}

// Load reads path on top of Default. An empty path skips the file. A
// missing envFile is ignored; an empty envFile means ".env".
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if _, err := cfg.Decode.ResampleQuality(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("AUDIO_TYPES"); ok {
		c.Loader.AudioTypes = strings.Split(v, ",")
		for i := range c.Loader.AudioTypes {
			c.Loader.AudioTypes[i] = strings.TrimSpace(c.Loader.AudioTypes[i])
		}
	}
	if v, ok := get("TARGET_SAMPLE_RATE"); ok {
		rate, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("%sTARGET_SAMPLE_RATE: %w", EnvPrefix, err)
		}
		c.Loader.TargetSampleRate = rate
	}
	if v, ok := get("ACCESS_PATHS"); ok {
		c.Loader.AccessPaths = v
	}
	if v, ok := get("RESAMPLE_QUALITY"); ok {
		c.Decode.Quality = v
	}
	if v, ok := get("BUFFER_SIZE"); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("%sBUFFER_SIZE: %w", EnvPrefix, err)
		}
		c.Decode.BufferSize = n
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("LOG_FILE"); ok {
		c.Log.Filename = v
	}

	return nil
}
