// heightray builds a terrain from a height source and answers height and
// ray queries against it.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Faultbox/heightray/internal/config"
	"github.com/Faultbox/heightray/internal/heightsource"
	"github.com/Faultbox/heightray/internal/logger"
	"github.com/Faultbox/heightray/internal/metrics"
	"github.com/Faultbox/heightray/pkg/terrain"
)

func main() {
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}
	if args[0] == "help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := initLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("Loaded config", zap.Reflect("config", cfg))

	if err := dispatch(cfg, args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			printUsage()
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`heightray - height field ray queries

Usage:
  heightray [flags] <command> [args]

Commands:
  info                         Show grid and pyramid information
  height <x> <y> [mip]         Height of the node covering cell (x, y)
  sample <x> <y> [mip]         Bilinear height at (x, y)
  cast <ox> <oy> <oz> <dx> <dy> <dz>
                               March a ray and print the hit parameter
  bench [-n N] [-seed S]       Cast random rays and report statistics;
                               with -metrics-addr, keeps serving /metrics
                               until interrupted
  maps <file.grf>              List the GAT tables inside a GRF archive
  save-config [path]           Write the effective config (default: user config dir)

Examples:
  heightray info
  heightray -source flat cast 0.5 40 0.5 1 -0.2 1
  heightray -source-path data.grf -source-entry data/prontera.gat sample 100.5 80.25
  heightray -metrics-addr :2112 bench -n 100000`)
}

// dispatch runs commands that need no terrain directly and builds one for
// the rest.
func dispatch(cfg *config.Config, command string, args []string) error {
	switch command {
	case "save-config":
		return cmdSaveConfig(cfg, args, os.Stdout)
	case "maps":
		return cmdMaps(args, os.Stdout)
	}

	reg := prometheus.NewRegistry()
	ter, err := buildTerrain(cfg, metrics.NewCollector(reg))
	if err != nil {
		return err
	}

	if cfg.Metrics.ListenAddr == "" || command != "bench" {
		return run(ter, command, args, os.Stdout)
	}

	ln, err := net.Listen("tcp", cfg.Metrics.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening for metrics: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	served := make(chan error, 1)
	go func() { served <- serveMetrics(ctx, ln, metrics.Handler(reg)) }()
	logger.Info("Serving metrics", zap.String("addr", ln.Addr().String()))

	if err := run(ter, command, args, os.Stdout); err != nil {
		stop()
		<-served
		return err
	}
	logger.Info("Bench finished, serving metrics until interrupted")
	return <-served
}

func initLogger(cfg config.LoggingConfig) error {
	if cfg.LogFile == "" {
		return logger.Init(cfg.Level, "")
	}
	fileCfg := logger.DefaultFileConfig(cfg.LogFile)
	fileCfg.JSON = cfg.JSON
	return logger.InitWithFileConfig(cfg.Level, fileCfg, true)
}

// buildTerrain creates the terrain and fills it from the configured source.
func buildTerrain(cfg *config.Config, obs terrain.Observer) (*terrain.Terrain, error) {
	ter, err := terrain.New(cfg.Terrain.Dimension, cfg.Terrain.HeightScale,
		terrain.WithLogger(logger.Named("terrain")),
		terrain.WithMaxDistance(cfg.Terrain.MaxDistance),
		terrain.WithObserver(obs),
	)
	if err != nil {
		return nil, err
	}

	heights, err := heightsource.Load(cfg.Source, cfg.Terrain.Dimension)
	if err != nil {
		return nil, fmt.Errorf("loading %s source: %w", cfg.Source.Kind, err)
	}
	if err := ter.SetWholeMap(heights); err != nil {
		return nil, err
	}

	logger.Info("Terrain ready",
		zap.String("source", cfg.Source.Kind),
		zap.Int("dimension", ter.Dimension()),
		zap.Int("levels", ter.Levels()))
	return ter, nil
}

// serveMetrics serves h on ln until ctx is done, then shuts down gracefully.
func serveMetrics(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		logger.Error("Metrics server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
