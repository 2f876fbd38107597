package raster

import (
	"math"
	"path/filepath"
	"testing"

	"snowstack/internal/band"
)

var testGeoTransform = [6]float64{399960, 10, 0, 5000040, 0, -10}

func testRef(width, height int) *GeoRef {
	return &GeoRef{
		Width:        width,
		Height:       height,
		GeoTransform: testGeoTransform,
	}
}

func gradientGrid(width, height int, offset float64) *band.Grid {
	g := &band.Grid{Width: width, Height: height, Pixels: make([]float64, width*height)}
	for i := range g.Pixels {
		g.Pixels[i] = offset + float64(i)
	}
	return g
}

func TestWriteGridReadBandRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "band.tif")
	grid := gradientGrid(4, 3, 100)

	if err := WriteGrid(path, testRef(4, 3), grid); err != nil {
		t.Fatalf("WriteGrid failed: %v", err)
	}

	got, ref, err := ReadBand(path)
	if err != nil {
		t.Fatalf("ReadBand failed: %v", err)
	}
	if ref.Width != 4 || ref.Height != 3 {
		t.Errorf("ReadBand returned %dx%d, want 4x3", ref.Width, ref.Height)
	}
	if ref.GeoTransform != testGeoTransform {
		t.Errorf("geotransform = %v, want %v", ref.GeoTransform, testGeoTransform)
	}
	for i := range grid.Pixels {
		if got.Pixels[i] != grid.Pixels[i] {
			t.Fatalf("pixel %d = %v, want %v", i, got.Pixels[i], grid.Pixels[i])
		}
	}
}

func TestWriteStackReadStackBand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "July.tif")

	grids := make([]*band.Grid, 0, len(band.StackOrder))
	for i := range band.StackOrder {
		grids = append(grids, gradientGrid(4, 4, float64(i)*1000))
	}

	if err := WriteStack(path, testRef(4, 4), grids); err != nil {
		t.Fatalf("WriteStack failed: %v", err)
	}

	info, err := StackInfo(path)
	if err != nil {
		t.Fatalf("StackInfo failed: %v", err)
	}
	if info.Bands != 5 || info.Width != 4 || info.Height != 4 {
		t.Errorf("StackInfo = %+v, want 5 bands of 4x4", info)
	}

	// Each named band must come back from its declared stack position.
	for i, b := range band.StackOrder {
		got, err := ReadStackBand(path, b)
		if err != nil {
			t.Fatalf("ReadStackBand(%v) failed: %v", b, err)
		}
		want := float64(i) * 1000
		if math.Abs(got.Pixels[0]-want) > 0 {
			t.Errorf("band %v pixel 0 = %v, want %v", b, got.Pixels[0], want)
		}
	}
}

func TestWriteStackWrongBandCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tif")
	grids := []*band.Grid{gradientGrid(2, 2, 0)}
	if err := WriteStack(path, testRef(2, 2), grids); err == nil {
		t.Error("WriteStack accepted a 1-band stack")
	}
}

func TestWriteStackDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tif")
	grids := make([]*band.Grid, 0, len(band.StackOrder))
	for range band.StackOrder {
		grids = append(grids, gradientGrid(2, 2, 0))
	}
	grids[2] = gradientGrid(3, 2, 0)
	if err := WriteStack(path, testRef(2, 2), grids); err == nil {
		t.Error("WriteStack accepted mismatched band dimensions")
	}
}

func TestReadStackBandInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.tif")
	if err := WriteGrid(path, testRef(2, 2), gradientGrid(2, 2, 0)); err != nil {
		t.Fatalf("WriteGrid failed: %v", err)
	}

	// SWIR is stack position 5; a single-band file cannot satisfy it.
	if _, err := ReadStackBand(path, band.SWIR); err == nil {
		t.Error("ReadStackBand read band 5 of a single-band file")
	}

	if _, err := ReadStackBand(path, band.Band(99)); err == nil {
		t.Error("ReadStackBand accepted an unknown band")
	}
}

func TestReadBandMissingFile(t *testing.T) {
	if _, _, err := ReadBand(filepath.Join(t.TempDir(), "nope.tif")); err == nil {
		t.Error("ReadBand succeeded on a missing file")
	}
}

func TestWriteStackOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "month.tif")

	first := make([]*band.Grid, 0, len(band.StackOrder))
	second := make([]*band.Grid, 0, len(band.StackOrder))
	for range band.StackOrder {
		first = append(first, gradientGrid(2, 2, 0))
		second = append(second, gradientGrid(2, 2, 500))
	}

	if err := WriteStack(path, testRef(2, 2), first); err != nil {
		t.Fatalf("first WriteStack failed: %v", err)
	}
	if err := WriteStack(path, testRef(2, 2), second); err != nil {
		t.Fatalf("second WriteStack failed: %v", err)
	}

	got, err := ReadStackBand(path, band.Blue)
	if err != nil {
		t.Fatalf("ReadStackBand failed: %v", err)
	}
	if got.Pixels[0] != 500 {
		t.Errorf("pixel 0 after overwrite = %v, want 500", got.Pixels[0])
	}
}
