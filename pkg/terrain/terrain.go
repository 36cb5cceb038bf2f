// Package terrain answers height and ray queries against a height field
// backed by a max-height mip pyramid.
//
// A Terrain is not safe for concurrent use; the owner serializes calls.
package terrain

import (
	"time"

	"go.uber.org/zap"
)

// Defaults used by New.
const (
	DefaultHeightScale = 60.0
	DefaultMaxDistance = 1000.0
)

// Terrain owns a height field, its pyramid and the read-time height scale.
type Terrain struct {
	pyr         *Pyramid
	heightScale float32
	maxDistance float32
	log         *zap.Logger
	observer    Observer
}

// Option configures a Terrain.
type Option func(*Terrain)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(t *Terrain) {
		if l != nil {
			t.log = l
		}
	}
}

// WithMaxDistance sets the ray march travel budget, in world units.
func WithMaxDistance(d float32) Option {
	return func(t *Terrain) {
		if d > 0 {
			t.maxDistance = d
		}
	}
}

// WithObserver installs an observer notified of marches and updates.
func WithObserver(o Observer) Option {
	return func(t *Terrain) {
		if o != nil {
			t.observer = o
		}
	}
}

// New creates a flat terrain of dimension x dimension cells.
func New(dimension int, heightScale float32, opts ...Option) (*Terrain, error) {
	pyr, err := NewPyramid(dimension)
	if err != nil {
		return nil, err
	}

	t := &Terrain{
		pyr:         pyr,
		heightScale: heightScale,
		maxDistance: DefaultMaxDistance,
		log:         zap.NewNop(),
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Dimension returns the grid side.
func (t *Terrain) Dimension() int {
	return t.pyr.Dimension()
}

// Levels returns the number of pyramid levels, finest included.
func (t *Terrain) Levels() int {
	return t.pyr.Levels()
}

// HeightScale returns the multiplier applied to stored samples on read.
func (t *Terrain) HeightScale() float32 {
	return t.heightScale
}

// SetHeightScale changes the read-time multiplier. Stored samples are untouched.
func (t *Terrain) SetHeightScale(s float32) {
	t.heightScale = s
}

// MaxDistance returns the ray march travel budget in world units.
func (t *Terrain) MaxDistance() float32 {
	return t.maxDistance
}

// MaxHeight returns the scaled maximum over the whole grid.
func (t *Terrain) MaxHeight() float32 {
	root := t.pyr.Layer(t.pyr.Levels() - 1)
	return root[0] * t.heightScale
}

// SetWholeMap replaces all samples with row-major values and rebuilds the
// pyramid. A wrong-sized input leaves the terrain unchanged.
func (t *Terrain) SetWholeMap(values []float32) error {
	start := time.Now()
	if err := t.pyr.LoadRowMajor(values); err != nil {
		t.log.Warn("Rejected height map",
			zap.Int("got", len(values)),
			zap.Int("want", t.pyr.Dimension()*t.pyr.Dimension()),
			zap.Error(err))
		t.observer.ObserveMapLoad(false)
		return err
	}

	t.log.Debug("Rebuilt height pyramid",
		zap.Int("dimension", t.pyr.Dimension()),
		zap.Int("levels", t.pyr.Levels()),
		zap.Duration("took", time.Since(start)))
	t.observer.ObserveMapLoad(true)
	return nil
}

// SetHeightAt writes one unscaled sample and patches the pyramid.
// Coordinates outside the grid are ignored.
func (t *Terrain) SetHeightAt(x, y int, height float32) {
	if t.pyr.Set(x, y, height) {
		t.observer.ObservePointUpdate()
	}
}

// GetHeight returns the scaled value of the level-mip node covering cell
// (x, y). It returns 0 outside the grid, and 0 with a warning when mip is
// not a pyramid level.
func (t *Terrain) GetHeight(x, y, mip int) float32 {
	if !t.checkMip(mip) {
		return 0
	}
	return t.node(mip, x>>mip, y>>mip)
}

// GetHeightInterpolated returns the bilinear height at fractional cell
// coordinates (x, y) using the nodes of level mip.
func (t *Terrain) GetHeightInterpolated(x, y float32, mip int) float32 {
	if !t.checkMip(mip) {
		return 0
	}
	cell := float32(int(1) << mip)
	return t.sample(mip, x/cell, y/cell)
}

func (t *Terrain) checkMip(mip int) bool {
	if mip >= 0 && mip < t.pyr.Levels() {
		return true
	}
	t.log.Warn("Mip level out of range",
		zap.Int("mip", mip),
		zap.Int("levels", t.pyr.Levels()))
	return false
}

// node returns a scaled level-local node, 0 when outside the level.
func (t *Terrain) node(level, x, y int) float32 {
	v, ok := t.pyr.Node(level, x, y)
	if !ok {
		return 0
	}
	return v * t.heightScale
}
