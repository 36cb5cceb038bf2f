package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	stdmath "math"
	"math/rand"
	"strconv"

	"github.com/Faultbox/heightray/internal/config"
	"github.com/Faultbox/heightray/internal/heightsource"
	"github.com/Faultbox/heightray/pkg/math"
	"github.com/Faultbox/heightray/pkg/terrain"
)

var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// run executes one command against ter and writes its output to w.
func run(ter *terrain.Terrain, command string, args []string, w io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(ter, w)
	case "height":
		return cmdHeight(ter, args, w)
	case "sample":
		return cmdSample(ter, args, w)
	case "cast":
		return cmdCast(ter, args, w)
	case "bench":
		return cmdBench(ter, args, w)
	default:
		return usageError("unknown command %q", command)
	}
}

func cmdInfo(ter *terrain.Terrain, w io.Writer) error {
	fmt.Fprintf(w, "Dimension:    %d x %d\n", ter.Dimension(), ter.Dimension())
	fmt.Fprintf(w, "Levels:       %d\n", ter.Levels())
	fmt.Fprintf(w, "Height scale: %g\n", ter.HeightScale())
	fmt.Fprintf(w, "Max height:   %g\n", ter.MaxHeight())
	fmt.Fprintf(w, "Max distance: %g\n", ter.MaxDistance())

	fmt.Fprintln(w, "\nLayers:")
	for k := 0; k < ter.Levels(); k++ {
		side := ter.Dimension() >> k
		fmt.Fprintf(w, "  %2d  %6d x %-6d %10d nodes\n", k, side, side, side*side)
	}
	return nil
}

func cmdHeight(ter *terrain.Terrain, args []string, w io.Writer) error {
	if len(args) < 2 || len(args) > 3 {
		return usageError("height <x> <y> [mip]")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("parsing x: %w", err)
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("parsing y: %w", err)
	}
	mip, err := optionalMip(args[2:])
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%g\n", ter.GetHeight(x, y, mip))
	return nil
}

func cmdSample(ter *terrain.Terrain, args []string, w io.Writer) error {
	if len(args) < 2 || len(args) > 3 {
		return usageError("sample <x> <y> [mip]")
	}
	coords, err := parseFloats(args[:2])
	if err != nil {
		return err
	}
	mip, err := optionalMip(args[2:])
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%g\n", ter.GetHeightInterpolated(coords[0], coords[1], mip))
	return nil
}

func cmdCast(ter *terrain.Terrain, args []string, w io.Writer) error {
	if len(args) != 6 {
		return usageError("cast <ox> <oy> <oz> <dx> <dy> <dz>")
	}
	v, err := parseFloats(args)
	if err != nil {
		return err
	}

	origin := math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	dir := math.Vec3{X: v[3], Y: v[4], Z: v[5]}
	res := ter.March(origin, dir)

	switch {
	case res.Degenerate:
		fmt.Fprintln(w, "degenerate ray")
	case res.Hit:
		p := origin.PointAt(dir, res.T)
		fmt.Fprintf(w, "hit t=%g at (%g, %g, %g)\n", res.T, p.X, p.Y, p.Z)
	default:
		fmt.Fprintf(w, "miss t=%g\n", res.T)
	}
	fmt.Fprintf(w, "steps=%d descents=%d max_mip=%d\n", res.Steps, res.Descents, res.MaxMip)
	return nil
}

func cmdBench(ter *terrain.Terrain, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	n := fs.Int("n", 10000, "Number of rays")
	seed := fs.Int64("seed", 1, "Random seed")
	if err := fs.Parse(args); err != nil {
		return usageError("bench [-n N] [-seed S]: %v", err)
	}
	if *n <= 0 {
		return usageError("bench: -n must be positive")
	}

	rng := rand.New(rand.NewSource(*seed))
	dim := float64(ter.Dimension())
	top := ter.MaxHeight() + 1

	var hits, steps int
	for i := 0; i < *n; i++ {
		origin := math.Vec3{
			X: float32(rng.Float64() * dim),
			Y: top,
			Z: float32(rng.Float64() * dim),
		}
		heading := rng.Float64() * 2 * stdmath.Pi
		pitch := 0.05 + rng.Float64()*0.45
		dir := math.Vec3{
			X: float32(stdmath.Cos(heading)),
			Y: float32(-pitch),
			Z: float32(stdmath.Sin(heading)),
		}

		res := ter.March(origin, dir)
		if res.Hit {
			hits++
		}
		steps += res.Steps
	}

	fmt.Fprintf(w, "Rays:       %d\n", *n)
	fmt.Fprintf(w, "Hits:       %d (%.1f%%)\n", hits, float64(hits)*100/float64(*n))
	fmt.Fprintf(w, "Mean steps: %.2f\n", float64(steps)/float64(*n))
	return nil
}

func cmdSaveConfig(cfg *config.Config, args []string, w io.Writer) error {
	if len(args) > 1 {
		return usageError("save-config [path]")
	}

	path := config.DefaultPath()
	save := cfg.Save
	if len(args) == 1 {
		path = args[0]
		save = func() error { return cfg.SaveTo(path) }
	}
	if err := save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(w, "Saved config to %s\n", path)
	return nil
}

func cmdMaps(args []string, w io.Writer) error {
	if len(args) != 1 {
		return usageError("maps <file.grf>")
	}
	gats, err := heightsource.ListGATs(args[0])
	if err != nil {
		return err
	}
	for _, name := range gats {
		fmt.Fprintln(w, name)
	}
	fmt.Fprintf(w, "\n%d maps\n", len(gats))
	return nil
}

func optionalMip(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	mip, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("parsing mip: %w", err)
	}
	return mip, nil
}

func parseFloats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", a, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
