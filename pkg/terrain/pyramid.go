package terrain

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/Faultbox/heightray/pkg/morton"
)

// Height field errors.
var (
	ErrInvalidDimension = errors.New("dimension must be a power of two in [1, 65536]")
	ErrSizeMismatch     = errors.New("height data size mismatch")
)

// MaxDimension is the largest supported grid side.
const MaxDimension = morton.MaxCoord + 1

// Pyramid is a Morton-ordered height field together with its max-height levels.
// Layer 0 holds one sample per cell; each node of layer k+1 holds the
// maximum of the four consecutive layer-k nodes below it.
type Pyramid struct {
	dim    int
	layers [][]float32
}

// ValidDimension reports whether dim is an accepted grid side.
func ValidDimension(dim int) bool {
	return dim >= 1 && dim <= MaxDimension && dim&(dim-1) == 0
}

// NewPyramid creates a flat (all zero) pyramid for a dim x dim grid.
func NewPyramid(dim int) (*Pyramid, error) {
	if !ValidDimension(dim) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimension, dim)
	}
	p := &Pyramid{
		dim:    dim,
		layers: [][]float32{make([]float32, dim*dim)},
	}
	p.Rebuild()
	return p, nil
}

// Dimension returns the grid side of layer 0.
func (p *Pyramid) Dimension() int {
	return p.dim
}

// Levels returns the number of layers, finest included.
func (p *Pyramid) Levels() int {
	return bits.Len(uint(p.dim))
}

// Layer returns layer k in Morton order. The slice must not be modified.
func (p *Pyramid) Layer(k int) []float32 {
	if k < 0 || k >= len(p.layers) {
		return nil
	}
	return p.layers[k]
}

// Get returns the layer-0 sample at (x, y), or 0 outside the grid.
func (p *Pyramid) Get(x, y int) float32 {
	v, _ := p.Node(0, x, y)
	return v
}

// Node returns the level-k node at level-local coordinates (x, y).
func (p *Pyramid) Node(level, x, y int) (float32, bool) {
	if level < 0 || level >= len(p.layers) {
		return 0, false
	}
	side := p.dim >> level
	if x < 0 || y < 0 || x >= side || y >= side {
		return 0, false
	}
	return p.layers[level][morton.Encode(uint32(x), uint32(y))], true
}

// Set writes the layer-0 sample at (x, y) and patches its ancestors.
// Writes outside the grid are ignored; the return value reports whether
// anything changed.
func (p *Pyramid) Set(x, y int, v float32) bool {
	if x < 0 || y < 0 || x >= p.dim || y >= p.dim {
		return false
	}
	idx := morton.Encode(uint32(x), uint32(y))
	p.layers[0][idx] = v
	p.propagate(idx)
	return true
}

// LoadRowMajor replaces layer 0 with values given in row-major order
// (values[y*dim+x]) and rebuilds every coarser layer. On a length
// mismatch nothing is modified.
func (p *Pyramid) LoadRowMajor(values []float32) error {
	want := p.dim * p.dim
	if len(values) != want {
		return fmt.Errorf("%w: got %d values, want %d", ErrSizeMismatch, len(values), want)
	}

	base := make([]float32, want)
	for y := 0; y < p.dim; y++ {
		row := values[y*p.dim : (y+1)*p.dim]
		for x, v := range row {
			base[morton.Encode(uint32(x), uint32(y))] = v
		}
	}

	p.layers = append(p.layers[:0], base)
	p.Rebuild()
	return nil
}

// Rebuild recomputes every layer above layer 0 from scratch.
// Sibling groups are contiguous in Morton order, so each coarser node is
// the max of a run of four.
func (p *Pyramid) Rebuild() {
	p.layers = p.layers[:1]
	for prev := p.layers[0]; len(prev) > 1; prev = p.layers[len(p.layers)-1] {
		next := make([]float32, len(prev)/4)
		for i := range next {
			next[i] = max4(prev[4*i : 4*i+4])
		}
		p.layers = append(p.layers, next)
	}
}

// propagate walks from a changed layer-0 index up to the root, refreshing
// the max of each ancestor from its four children.
func (p *Pyramid) propagate(idx uint64) {
	for k := 0; k < len(p.layers)-1; k++ {
		start := morton.FirstSibling(idx)
		parent := morton.Parent(idx)
		p.layers[k+1][parent] = max4(p.layers[k][start : start+4])
		idx = parent
	}
}

func max4(s []float32) float32 {
	return max(s[0], s[1], s[2], s[3])
}
