package band

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Grid is a single-channel raster: Width×Height samples stored row-major.
type Grid struct {
	Width  int
	Height int
	Pixels []float64
}

// Stats summarizes the value range of a grid. Recorded per band in the run
// manifest and used by min-max normalization.
type Stats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// NewGrid creates a zero-filled grid of the given dimensions.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	return &Grid{
		Width:  width,
		Height: height,
		Pixels: make([]float64, width*height),
	}, nil
}

// Validate checks the pixel buffer matches the declared dimensions.
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.New("grid dimensions must be positive")
	}
	if len(g.Pixels) != g.Width*g.Height {
		return fmt.Errorf("pixel buffer has %d samples, want %d", len(g.Pixels), g.Width*g.Height)
	}
	return nil
}

// At returns the sample at column x, row y.
func (g *Grid) At(x, y int) float64 {
	return g.Pixels[y*g.Width+x]
}

// Set stores a sample at column x, row y.
func (g *Grid) Set(x, y int, v float64) {
	g.Pixels[y*g.Width+x] = v
}

// SameShape reports whether two grids share dimensions.
func (g *Grid) SameShape(other *Grid) bool {
	return g.Width == other.Width && g.Height == other.Height
}

// Stats computes the grid's min, max, and mean.
func (g *Grid) Stats() Stats {
	return Stats{
		Min:  floats.Min(g.Pixels),
		Max:  floats.Max(g.Pixels),
		Mean: stat.Mean(g.Pixels, nil),
	}
}

// Normalize rescales the grid linearly to [0, 1] using its own min and max.
// The minimum maps to 0 and the maximum to 1. A constant grid has no range
// to scale over and normalizes to all zeros rather than dividing by zero.
func (g *Grid) Normalize() *Grid {
	min := floats.Min(g.Pixels)
	max := floats.Max(g.Pixels)

	out := &Grid{
		Width:  g.Width,
		Height: g.Height,
		Pixels: make([]float64, len(g.Pixels)),
	}
	if max == min {
		return out
	}

	span := max - min
	for i, v := range g.Pixels {
		out.Pixels[i] = (v - min) / span
	}
	return out
}
