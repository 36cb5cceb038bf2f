package terrain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomHeights(rng *rand.Rand, n int) []float32 {
	values := make([]float32, n)
	for i := range values {
		values[i] = rng.Float32()
	}
	return values
}

func rowMajor(p *Pyramid) []float32 {
	out := make([]float32, 0, p.Dimension()*p.Dimension())
	for y := 0; y < p.Dimension(); y++ {
		for x := 0; x < p.Dimension(); x++ {
			out = append(out, p.Get(x, y))
		}
	}
	return out
}

func cloneLayers(p *Pyramid) [][]float32 {
	out := make([][]float32, p.Levels())
	for k := range out {
		out[k] = append([]float32(nil), p.Layer(k)...)
	}
	return out
}

func TestNewPyramidDimensions(t *testing.T) {
	for _, dim := range []int{0, -4, 3, 6, 100, MaxDimension * 2} {
		_, err := NewPyramid(dim)
		assert.ErrorIs(t, err, ErrInvalidDimension, "dimension %d", dim)
	}
	for _, dim := range []int{1, 2, 4, 256} {
		p, err := NewPyramid(dim)
		require.NoError(t, err, "dimension %d", dim)
		assert.Equal(t, dim, p.Dimension())
	}
}

func TestLayerSizes(t *testing.T) {
	tests := []struct {
		dim    int
		levels int
	}{
		{1, 1},
		{2, 2},
		{4, 3},
		{8, 4},
		{64, 7},
	}
	for _, tt := range tests {
		p, err := NewPyramid(tt.dim)
		require.NoError(t, err)

		require.Equal(t, tt.levels, p.Levels(), "dimension %d", tt.dim)
		require.Len(t, p.Layer(0), tt.dim*tt.dim)
		for k := 0; k+1 < p.Levels(); k++ {
			assert.Len(t, p.Layer(k+1), len(p.Layer(k))/4, "dimension %d level %d", tt.dim, k+1)
		}
		assert.Len(t, p.Layer(p.Levels()-1), 1)
		assert.Nil(t, p.Layer(p.Levels()))
	}
}

func TestRebuildMatchesBruteForce(t *testing.T) {
	const dim = 16
	rng := rand.New(rand.NewSource(1))
	values := randomHeights(rng, dim*dim)

	p, err := NewPyramid(dim)
	require.NoError(t, err)
	require.NoError(t, p.LoadRowMajor(values))

	for level := 0; level < p.Levels(); level++ {
		cell := 1 << level
		side := dim >> level
		for ny := 0; ny < side; ny++ {
			for nx := 0; nx < side; nx++ {
				var want float32
				for y := ny * cell; y < (ny+1)*cell; y++ {
					for x := nx * cell; x < (nx+1)*cell; x++ {
						want = max(want, values[y*dim+x])
					}
				}
				got, ok := p.Node(level, nx, ny)
				require.True(t, ok)
				require.Equal(t, want, got, "level %d node (%d, %d)", level, nx, ny)
			}
		}
	}
}

func TestLoadRowMajorSwizzle(t *testing.T) {
	p, err := NewPyramid(4)
	require.NoError(t, err)

	values := make([]float32, 16)
	for i := range values {
		values[i] = float32(i)
	}
	require.NoError(t, p.LoadRowMajor(values))

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, float32(y*4+x), p.Get(x, y))
		}
	}
	assert.Equal(t, values, rowMajor(p))
	// (1, 1) lands at Morton index 3, (2, 0) at 4.
	assert.Equal(t, float32(5), p.Layer(0)[3])
	assert.Equal(t, float32(2), p.Layer(0)[4])
}

func TestRebuildIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	values := randomHeights(rng, 32*32)

	a, err := NewPyramid(32)
	require.NoError(t, err)
	b, err := NewPyramid(32)
	require.NoError(t, err)

	require.NoError(t, a.LoadRowMajor(values))
	require.NoError(t, b.LoadRowMajor(values))
	assert.Equal(t, cloneLayers(a), cloneLayers(b))

	require.NoError(t, a.LoadRowMajor(values))
	assert.Equal(t, cloneLayers(a), cloneLayers(b))
}

func TestIncrementalMatchesRebuild(t *testing.T) {
	const dim = 32
	rng := rand.New(rand.NewSource(3))

	p, err := NewPyramid(dim)
	require.NoError(t, err)
	require.NoError(t, p.LoadRowMajor(randomHeights(rng, dim*dim)))

	for i := 0; i < 500; i++ {
		x, y := rng.Intn(dim), rng.Intn(dim)
		// Mix raises and lowers so stale maxima would show up.
		v := rng.Float32()
		if i%3 == 0 {
			v = 0
		}
		require.True(t, p.Set(x, y, v))
		require.Equal(t, v, p.Get(x, y))
	}

	fresh, err := NewPyramid(dim)
	require.NoError(t, err)
	require.NoError(t, fresh.LoadRowMajor(rowMajor(p)))
	assert.Equal(t, cloneLayers(fresh), cloneLayers(p))
}

func TestSetLowersAncestors(t *testing.T) {
	p, err := NewPyramid(4)
	require.NoError(t, err)

	p.Set(3, 3, 9)
	root, _ := p.Node(2, 0, 0)
	require.Equal(t, float32(9), root)

	p.Set(3, 3, 1)
	root, _ = p.Node(2, 0, 0)
	assert.Equal(t, float32(1), root)
	mid, _ := p.Node(1, 1, 1)
	assert.Equal(t, float32(1), mid)
}

func TestOutOfRangeAccess(t *testing.T) {
	p, err := NewPyramid(4)
	require.NoError(t, err)
	require.NoError(t, p.LoadRowMajor(make([]float32, 16)))
	before := cloneLayers(p)

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {MaxDimension, 0}} {
		assert.False(t, p.Set(c[0], c[1], 7), "Set(%d, %d)", c[0], c[1])
		assert.Equal(t, float32(0), p.Get(c[0], c[1]))
	}
	assert.Equal(t, before, cloneLayers(p))

	_, ok := p.Node(1, 2, 0)
	assert.False(t, ok, "level 1 of a 4x4 grid is 2x2")
	_, ok = p.Node(3, 0, 0)
	assert.False(t, ok)
}

func TestSingleCellPyramid(t *testing.T) {
	p, err := NewPyramid(1)
	require.NoError(t, err)

	require.True(t, p.Set(0, 0, 4))
	assert.Equal(t, 1, p.Levels())
	assert.Equal(t, float32(4), p.Get(0, 0))
	require.ErrorIs(t, p.LoadRowMajor([]float32{1, 2}), ErrSizeMismatch)
	require.NoError(t, p.LoadRowMajor([]float32{2}))
	assert.Equal(t, float32(2), p.Get(0, 0))
}
