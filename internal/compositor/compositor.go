// Package compositor implements the band-stacking stage of the pipeline.
// It scans per-month input directories, verifies the five required band
// files are present, and writes one multi-band GeoTIFF stack per month.
//
// A month with missing bands or mismatched band dimensions is skipped with
// a warning and the run continues; only an unreadable input root or an
// unwritable output directory aborts the run.
package compositor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"snowstack/internal/band"
	"snowstack/internal/logger"
	"snowstack/internal/raster"
)

// ErrMissingBand marks a month skipped because a required band file is absent.
var ErrMissingBand = errors.New("required band file missing")

// ErrDimensionMismatch marks a month skipped because its bands differ in size.
var ErrDimensionMismatch = errors.New("band dimensions differ within month")

// Compositor stacks per-month band files into multi-band rasters.
type Compositor struct {
	dataDir   string
	stackDir  string
	filenames map[band.Band]string
}

// MonthResult records the outcome of stacking one month directory.
type MonthResult struct {
	Month        string
	StackPath    string
	Skipped      bool
	Reason       string
	MissingBands []string
	BandStats    map[string]band.Stats
}

// New creates a Compositor. filenames may override the source file name per
// band; bands without an override use band.DefaultFilenames.
func New(dataDir, stackDir string, filenames map[band.Band]string) *Compositor {
	merged := make(map[band.Band]string, len(band.StackOrder))
	for _, b := range band.StackOrder {
		merged[b] = band.DefaultFilenames[b]
	}
	for b, name := range filenames {
		merged[b] = name
	}
	return &Compositor{
		dataDir:   dataDir,
		stackDir:  stackDir,
		filenames: merged,
	}
}

// Run processes every month directory under the input root in lexical order
// and returns one result per directory. The returned error is nil unless the
// input root is unreadable or a stack cannot be written.
func (c *Compositor) Run() ([]MonthResult, error) {
	if err := os.MkdirAll(c.stackDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stack directory %s: %w", c.stackDir, err)
	}

	entries, err := os.ReadDir(c.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input root %s: %w", c.dataDir, err)
	}

	var results []MonthResult
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		res, err := c.stackMonth(entry.Name())
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}

	stacked := 0
	for _, r := range results {
		if !r.Skipped {
			stacked++
		}
	}
	logger.Info("Stacking complete: %d months stacked, %d skipped", stacked, len(results)-stacked)

	return results, nil
}

// stackMonth stacks a single month directory. A non-nil error is fatal for
// the run; recoverable problems are reported through the result instead.
func (c *Compositor) stackMonth(month string) (*MonthResult, error) {
	monthDir := filepath.Join(c.dataDir, month)
	res := &MonthResult{Month: month}

	var missing []string
	for _, b := range band.StackOrder {
		path := filepath.Join(monthDir, c.filenames[b])
		if _, err := os.Stat(path); err != nil {
			logger.Warn("%s not found in %s", c.filenames[b], month)
			missing = append(missing, b.String())
		}
	}
	if len(missing) > 0 {
		logger.Warn("Skipping %s due to missing bands: %v", month, missing)
		res.Skipped = true
		res.Reason = ErrMissingBand.Error()
		res.MissingBands = missing
		return res, nil
	}

	grids := make([]*band.Grid, 0, len(band.StackOrder))
	stats := make(map[string]band.Stats, len(band.StackOrder))
	var ref *raster.GeoRef

	for _, b := range band.StackOrder {
		path := filepath.Join(monthDir, c.filenames[b])
		grid, bandRef, err := raster.ReadBand(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", month, err)
			res.Skipped = true
			res.Reason = err.Error()
			return res, nil
		}

		// Spatial metadata comes from the first band read.
		if ref == nil {
			ref = bandRef
		} else if grid.Width != ref.Width || grid.Height != ref.Height {
			err := fmt.Errorf("%w: %s band %s is %dx%d, first band is %dx%d",
				ErrDimensionMismatch, month, b, grid.Width, grid.Height, ref.Width, ref.Height)
			logger.Warn("Skipping %s: %v", month, err)
			res.Skipped = true
			res.Reason = err.Error()
			return res, nil
		}

		grids = append(grids, grid)
		stats[b.String()] = grid.Stats()
	}

	stackPath := filepath.Join(c.stackDir, month+".tif")
	if err := raster.WriteStack(stackPath, ref, grids); err != nil {
		return nil, fmt.Errorf("failed to write stack for %s: %w", month, err)
	}

	logger.Info("Created %s", stackPath)
	res.StackPath = stackPath
	res.BandStats = stats
	return res, nil
}
