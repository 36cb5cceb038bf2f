package heightsource

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// GAT format errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
)

const (
	gatHeaderSize = 14
	gatCellSize   = 20 // four float32 corners and a uint32 type
)

// GAT is the altitude part of a Ragnarok Online ground altitude table.
// Each cell stores four corner altitudes where more negative means higher.
type GAT struct {
	Major, Minor uint8
	Width        int
	Height       int
	// Corners holds Width*Height cells of [bottom-left, bottom-right,
	// top-left, top-right] altitudes, row-major.
	Corners [][4]float32
}

// ParseGAT parses a GAT file from raw bytes. Cell types are skipped.
func ParseGAT(data []byte) (*GAT, error) {
	if len(data) < gatHeaderSize {
		return nil, ErrTruncatedGATData
	}
	if string(data[0:4]) != "GRAT" {
		return nil, ErrInvalidGATMagic
	}

	// Version is stored as [minor, major]; cell layout is the same for 1.x to 3.x.
	g := &GAT{Minor: data[4], Major: data[5]}
	if g.Major < 1 || g.Major > 3 {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedGATVersion, g.Major, g.Minor)
	}

	width := binary.LittleEndian.Uint32(data[6:10])
	height := binary.LittleEndian.Uint32(data[10:14])
	if width == 0 || height == 0 || width > 4096 || height > 4096 {
		return nil, fmt.Errorf("invalid GAT dimensions: %dx%d", width, height)
	}
	g.Width, g.Height = int(width), int(height)

	type rawCell struct {
		Heights [4]float32
		Type    uint32
	}
	count := g.Width * g.Height
	if need := count * gatCellSize; len(data)-gatHeaderSize < need {
		return nil, fmt.Errorf("%w: %d cells need %d bytes, have %d",
			ErrTruncatedGATData, count, need, len(data)-gatHeaderSize)
	}
	cells := make([]rawCell, count)
	if err := binary.Read(bytes.NewReader(data[gatHeaderSize:]), binary.LittleEndian, cells); err != nil {
		return nil, fmt.Errorf("%w: reading %d cells: %v", ErrTruncatedGATData, len(cells), err)
	}

	g.Corners = make([][4]float32, len(cells))
	for i, c := range cells {
		g.Corners[i] = c.Heights
	}
	return g, nil
}

// LoadGATFile parses a GAT file from disk.
func LoadGATFile(path string) (*GAT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	return ParseGAT(data)
}

// Heights converts the table to dim*dim row-major samples in [0, 1].
// Each cell contributes the average of its corners, flipped so that up is
// positive, and the grid is resampled to dim by nearest neighbour.
func (g *GAT) Heights(dim int) []float32 {
	src := make([]float32, len(g.Corners))
	for i, c := range g.Corners {
		src[i] = -(c[0] + c[1] + c[2] + c[3]) / 4
	}
	return Normalize(Resample(src, g.Width, g.Height, dim))
}
