package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagDimension   = flag.Int("dimension", 0, "Grid side (power of two)")
	flagHeightScale = flag.Float64("height-scale", 0, "World units per stored height unit")
	flagSource      = flag.String("source", "", "Height source: perlin, gat or flat")
	flagSourcePath  = flag.String("source-path", "", "GAT file, or GRF archive with -source-entry")
	flagSourceEntry = flag.String("source-entry", "", "GAT path inside the GRF archive")
	flagSeed        = flag.Int64("seed", 0, "Perlin seed")
	flagMetricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDimension > 0 {
		cfg.Terrain.Dimension = *flagDimension
	}
	if *flagHeightScale > 0 {
		cfg.Terrain.HeightScale = float32(*flagHeightScale)
	}
	if *flagSource != "" {
		cfg.Source.Kind = *flagSource
	}
	if *flagSourceEntry != "" {
		cfg.Source.Entry = *flagSourceEntry
	}
	if *flagSourcePath != "" {
		cfg.Source.Path = *flagSourcePath
		if *flagSource == "" {
			cfg.Source.Kind = SourceGAT
			if *flagSourceEntry != "" {
				cfg.Source.Kind = SourceGRF
			}
		}
	}
	if *flagSeed != 0 {
		cfg.Source.Seed = *flagSeed
	}
	if *flagMetricsAddr != "" {
		cfg.Metrics.ListenAddr = *flagMetricsAddr
	}
}
