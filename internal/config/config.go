// Package config handles importer configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/xscene/pkg/scene"
	"github.com/Faultbox/xscene/pkg/xfile"
)

// Config holds all importer settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Encode  EncodeConfig  `yaml:"encode"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig holds scene import settings.
type ImportConfig struct {
	// Passes names the post-process passes to run, in any order; execution
	// order is fixed by the post-processor.
	Passes []string `yaml:"passes"`

	// LenientKeyframes sorts out-of-order animation keys instead of failing.
	LenientKeyframes bool `yaml:"lenient_keyframes"`
}

// EncodeConfig holds text re-encoding settings.
type EncodeConfig struct {
	DoublePrecision bool `yaml:"double_precision"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Passes: []string{
				"triangulate",
				"find-degenerates",
				"join-identical-vertices",
				"gen-normals",
				"gen-bounding-boxes",
				"validate",
			},
			LenientKeyframes: false,
		},
		Encode: EncodeConfig{
			DoublePrecision: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Options resolves the configuration into import options.
func (c *Config) Options() (xfile.Options, error) {
	opts := xfile.Options{
		LenientKeyframes: c.Import.LenientKeyframes,
		DoublePrecision:  c.Encode.DoublePrecision,
	}
	for _, name := range c.Import.Passes {
		p, err := scene.ParseProcess(name)
		if err != nil {
			return opts, fmt.Errorf("import.passes: %w", err)
		}
		opts.PostProcess |= p
	}
	return opts, nil
}
