// Package raster reads and writes raster files through GDAL (via godal).
// It handles single-band source files (JP2 or GeoTIFF), the per-month
// five-band GeoTIFF stacks, and the spatial metadata copied between them.
package raster

import (
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"

	"snowstack/internal/band"
)

// GeoRef carries the spatial metadata shared by all bands of a month:
// dimensions, affine pixel transform, and projection WKT. It is read from
// the first band of a month and copied onto the stack.
type GeoRef struct {
	Width        int
	Height       int
	GeoTransform [6]float64
	Projection   string
}

var registerDrivers sync.Once

func ensureDrivers() {
	registerDrivers.Do(godal.RegisterAll)
}

// ReadBand reads band 1 of a single-band raster file into a float64 grid,
// along with the file's spatial metadata.
func ReadBand(path string) (*band.Grid, *GeoRef, error) {
	ensureDrivers()

	ds, err := godal.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	ref := refFromDataset(ds)
	grid, err := readBandAt(ds, 0, ref)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return grid, ref, nil
}

// WriteGrid writes a single-band float64 GeoTIFF. Used for synthetic
// fixtures and debugging dumps; the pipeline itself only writes stacks.
func WriteGrid(path string, ref *GeoRef, grid *band.Grid) error {
	return write(path, ref, []*band.Grid{grid})
}

// WriteStack writes the per-month multi-band GeoTIFF: one band per entry of
// band.StackOrder, in order, with the spatial metadata from ref. Any
// existing file at path is overwritten.
func WriteStack(path string, ref *GeoRef, grids []*band.Grid) error {
	if len(grids) != len(band.StackOrder) {
		return fmt.Errorf("stack requires %d bands, got %d", len(band.StackOrder), len(grids))
	}
	return write(path, ref, grids)
}

func write(path string, ref *GeoRef, grids []*band.Grid) error {
	ensureDrivers()

	for i, g := range grids {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("band %d: %w", i+1, err)
		}
		if g.Width != ref.Width || g.Height != ref.Height {
			return fmt.Errorf("band %d is %dx%d, reference is %dx%d",
				i+1, g.Width, g.Height, ref.Width, ref.Height)
		}
	}

	ds, err := godal.Create(godal.GTiff, path, len(grids), godal.Float64, ref.Width, ref.Height)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := ds.SetGeoTransform(ref.GeoTransform); err != nil {
		ds.Close()
		return fmt.Errorf("failed to set geotransform on %s: %w", path, err)
	}
	if ref.Projection != "" {
		if err := ds.SetProjection(ref.Projection); err != nil {
			ds.Close()
			return fmt.Errorf("failed to set projection on %s: %w", path, err)
		}
	}

	bands := ds.Bands()
	for i, g := range grids {
		if err := bands[i].Write(0, 0, g.Pixels, g.Width, g.Height); err != nil {
			ds.Close()
			return fmt.Errorf("failed to write band %d of %s: %w", i+1, path, err)
		}
	}

	if err := ds.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

// ReadStackBand reads one named band out of a multi-band stack file.
func ReadStackBand(path string, b band.Band) (*band.Grid, error) {
	ensureDrivers()

	if err := b.Validate(); err != nil {
		return nil, err
	}

	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stack %s: %w", path, err)
	}
	defer ds.Close()

	ref := refFromDataset(ds)
	idx := b.StackPosition() - 1
	if idx >= len(ds.Bands()) {
		return nil, fmt.Errorf("stack %s has %d bands, band %s is position %d",
			path, len(ds.Bands()), b, b.StackPosition())
	}

	grid, err := readBandAt(ds, idx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read band %s of %s: %w", b, path, err)
	}
	return grid, nil
}

// Info describes the shape of a raster file.
type Info struct {
	Width  int
	Height int
	Bands  int
}

// StackInfo returns the dimensions and band count of a raster file.
func StackInfo(path string) (Info, error) {
	ensureDrivers()

	ds, err := godal.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	st := ds.Structure()
	return Info{Width: st.SizeX, Height: st.SizeY, Bands: st.NBands}, nil
}

func refFromDataset(ds *godal.Dataset) *GeoRef {
	st := ds.Structure()
	ref := &GeoRef{
		Width:      st.SizeX,
		Height:     st.SizeY,
		Projection: ds.Projection(),
	}
	// Plain images carry no geotransform; leave it zeroed in that case.
	if gt, err := ds.GeoTransform(); err == nil {
		ref.GeoTransform = gt
	}
	return ref
}

func readBandAt(ds *godal.Dataset, idx int, ref *GeoRef) (*band.Grid, error) {
	buf := make([]float64, ref.Width*ref.Height)
	if err := ds.Bands()[idx].Read(0, 0, buf, ref.Width, ref.Height); err != nil {
		return nil, err
	}
	return &band.Grid{Width: ref.Width, Height: ref.Height, Pixels: buf}, nil
}
