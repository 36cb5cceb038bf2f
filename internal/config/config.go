// Package config handles heightray configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/heightray/pkg/terrain"
)

// Height source kinds.
const (
	SourcePerlin = "perlin"
	SourceGAT    = "gat"
	SourceGRF    = "grf"
	SourceFlat   = "flat"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all heightray settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Source  SourceConfig  `yaml:"source"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig holds the tunables of the height field.
type TerrainConfig struct {
	Dimension   int     `yaml:"dimension"`    // Grid side, power of two
	HeightScale float32 `yaml:"height_scale"` // World units per stored unit
	MaxDistance float32 `yaml:"max_distance"` // Ray march travel budget
}

// SourceConfig selects where the initial height data comes from.
type SourceConfig struct {
	Kind       string  `yaml:"kind"`  // perlin, gat, grf or flat
	Path       string  `yaml:"path"`  // GAT file, or GRF archive for kind grf
	Entry      string  `yaml:"entry"` // GAT path inside the GRF archive
	Seed       int64   `yaml:"seed"`
	Alpha      float64 `yaml:"alpha"`
	Beta       float64 `yaml:"beta"`
	Octaves    int32   `yaml:"octaves"`
	Frequency  float64 `yaml:"frequency"`
	FlatHeight float32 `yaml:"flat_height"`
}

// MetricsConfig holds Prometheus exporter settings.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"` // Empty disables the endpoint
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Dimension:   512,
			HeightScale: terrain.DefaultHeightScale,
			MaxDistance: terrain.DefaultMaxDistance,
		},
		Source: SourceConfig{
			Kind:       SourcePerlin,
			Seed:       1,
			Alpha:      2,
			Beta:       2,
			Octaves:    3,
			Frequency:  4,
			FlatHeight: 0.5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if !terrain.ValidDimension(c.Terrain.Dimension) {
		return fmt.Errorf("%w: terrain.dimension %d is not a power of two in [1, %d]",
			ErrInvalidConfig, c.Terrain.Dimension, terrain.MaxDimension)
	}
	if c.Terrain.MaxDistance <= 0 {
		return fmt.Errorf("%w: terrain.max_distance must be positive", ErrInvalidConfig)
	}

	switch c.Source.Kind {
	case SourcePerlin:
		if c.Source.Octaves < 1 {
			return fmt.Errorf("%w: source.octaves must be at least 1", ErrInvalidConfig)
		}
	case SourceGAT:
		if c.Source.Path == "" {
			return fmt.Errorf("%w: source.path is required for gat sources", ErrInvalidConfig)
		}
	case SourceGRF:
		if c.Source.Path == "" || c.Source.Entry == "" {
			return fmt.Errorf("%w: source.path and source.entry are required for grf sources", ErrInvalidConfig)
		}
	case SourceFlat:
	default:
		return fmt.Errorf("%w: unknown source.kind %q", ErrInvalidConfig, c.Source.Kind)
	}
	return nil
}
