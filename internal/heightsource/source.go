package heightsource

import (
	"fmt"

	"github.com/Faultbox/heightray/internal/config"
)

// Load produces the initial dim*dim height map described by cfg.
func Load(cfg config.SourceConfig, dim int) ([]float32, error) {
	switch cfg.Kind {
	case config.SourcePerlin:
		return Perlin(dim, PerlinConfig{
			Seed:      cfg.Seed,
			Alpha:     cfg.Alpha,
			Beta:      cfg.Beta,
			Octaves:   cfg.Octaves,
			Frequency: cfg.Frequency,
		}), nil
	case config.SourceGAT:
		gat, err := LoadGATFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		return gat.Heights(dim), nil
	case config.SourceGRF:
		gat, err := LoadGATFromArchive(cfg.Path, cfg.Entry)
		if err != nil {
			return nil, err
		}
		return gat.Heights(dim), nil
	case config.SourceFlat:
		return Flat(dim, cfg.FlatHeight), nil
	default:
		return nil, fmt.Errorf("unknown height source %q", cfg.Kind)
	}
}
