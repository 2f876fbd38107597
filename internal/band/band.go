// Package band defines the fixed Sentinel-2 band set used by the pipeline
// and the single-channel grid type the transforms operate on.
//
// The stack order (blue, green, red, NIR, SWIR) is a contract shared by the
// compositor and the renderer: composites address bands by name, and names
// resolve to the same stack position in every month's raster.
package band

import (
	"errors"
	"fmt"
)

// Band identifies one of the five spectral bands processed by the pipeline.
type Band int

const (
	// Blue is Sentinel-2 band 2 (~490 nm).
	Blue Band = iota
	// Green is Sentinel-2 band 3 (~560 nm).
	Green
	// Red is Sentinel-2 band 4 (~665 nm).
	Red
	// NIR is Sentinel-2 band 8, near-infrared (~842 nm).
	NIR
	// SWIR is Sentinel-2 band 11, short-wave infrared (~1610 nm).
	SWIR
)

// StackOrder lists all five bands in their fixed raster stack order.
// Stack position is 1-indexed: StackOrder[0] is band 1 of the GeoTIFF.
var StackOrder = []Band{Blue, Green, Red, NIR, SWIR}

// bandNames maps bands to their canonical lowercase names.
var bandNames = map[Band]string{
	Blue:  "blue",
	Green: "green",
	Red:   "red",
	NIR:   "nir",
	SWIR:  "swir",
}

// DefaultFilenames maps each band to its source file name inside a month
// directory, following the Sentinel-2 Level-2A naming convention.
var DefaultFilenames = map[Band]string{
	Blue:  "B2.jp2",
	Green: "B3.jp2",
	Red:   "B4.jp2",
	NIR:   "B8.jp2",
	SWIR:  "B11.jp2",
}

// String returns the canonical lowercase band name.
func (b Band) String() string {
	if name, ok := bandNames[b]; ok {
		return name
	}
	return fmt.Sprintf("band(%d)", int(b))
}

// StackPosition returns the 1-indexed position of the band in the raster stack.
func (b Band) StackPosition() int {
	return int(b) + 1
}

// Parse resolves a canonical band name back to its Band value.
func Parse(name string) (Band, error) {
	for b, n := range bandNames {
		if n == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown band name %q", name)
}

// Validate checks that the band is one of the five known bands.
func (b Band) Validate() error {
	if _, ok := bandNames[b]; !ok {
		return errors.New("band must be one of blue, green, red, nir, swir")
	}
	return nil
}
