// Package renderer implements the composite-generation stage of the
// pipeline. For every multi-band stack it derives two products: a
// brightness- and gamma-corrected true-color image (red, green, blue bands)
// and an uncorrected false-color image (NIR, red, green bands), each
// persisted as a PNG named after the month.
package renderer

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"snowstack/internal/band"
	"snowstack/internal/logger"
	"snowstack/internal/raster"
)

// Default tone-mapping parameters for the true-color path.
const (
	DefaultBrightnessFactor = 1.2
	DefaultGamma            = 2.2
)

// Renderer derives true-color and false-color composites from band stacks.
type Renderer struct {
	stackDir      string
	trueColorDir  string
	falseColorDir string
	brightness    float64
	gamma         float64
}

// MonthResult records the outcome of rendering one stack file.
type MonthResult struct {
	Month          string
	TrueColorPath  string
	FalseColorPath string
	Failed         bool
	Reason         string
}

// New creates a Renderer. Non-positive brightness or gamma fall back to the
// defaults.
func New(stackDir, trueColorDir, falseColorDir string, brightness, gamma float64) *Renderer {
	if brightness <= 0 {
		brightness = DefaultBrightnessFactor
	}
	if gamma <= 0 {
		gamma = DefaultGamma
	}
	return &Renderer{
		stackDir:      stackDir,
		trueColorDir:  trueColorDir,
		falseColorDir: falseColorDir,
		brightness:    brightness,
		gamma:         gamma,
	}
}

// Run renders both composites for every .tif stack in the stack directory,
// in lexical order. A stack that cannot be read is reported and skipped; an
// unwritable output directory or a failed image write aborts the run.
func (r *Renderer) Run() ([]MonthResult, error) {
	for _, dir := range []string{r.trueColorDir, r.falseColorDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	entries, err := os.ReadDir(r.stackDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read stack directory %s: %w", r.stackDir, err)
	}

	var results []MonthResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tif") {
			continue
		}

		month := strings.TrimSuffix(entry.Name(), ".tif")
		res, err := r.renderMonth(month, filepath.Join(r.stackDir, entry.Name()))
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}

	rendered := 0
	for _, res := range results {
		if !res.Failed {
			rendered++
		}
	}
	logger.Info("Rendering complete: %d months rendered, %d failed", rendered, len(results)-rendered)

	return results, nil
}

// renderMonth produces both composites for one stack. A non-nil error is
// fatal for the run; unreadable stacks are reported through the result.
func (r *Renderer) renderMonth(month, stackPath string) (*MonthResult, error) {
	res := &MonthResult{Month: month}

	trueColor, err := r.trueColorComposite(stackPath)
	if err != nil {
		logger.Warn("Skipping %s: %v", month, err)
		res.Failed = true
		res.Reason = err.Error()
		return res, nil
	}

	falseColor, err := r.falseColorComposite(stackPath)
	if err != nil {
		logger.Warn("Skipping %s: %v", month, err)
		res.Failed = true
		res.Reason = err.Error()
		return res, nil
	}

	truePath := filepath.Join(r.trueColorDir, month+"_RGB.png")
	if err := savePNG(truePath, trueColor); err != nil {
		return nil, err
	}
	logger.Info("Saved true-color image: %s", truePath)

	falsePath := filepath.Join(r.falseColorDir, month+"_FalseColor.png")
	if err := savePNG(falsePath, falseColor); err != nil {
		return nil, err
	}
	logger.Info("Saved false-color image: %s", falsePath)

	res.TrueColorPath = truePath
	res.FalseColorPath = falsePath
	return res, nil
}

// trueColorComposite builds the tone-mapped red/green/blue composite.
func (r *Renderer) trueColorComposite(stackPath string) (*Composite, error) {
	c, err := composeBands(stackPath, band.Red, band.Green, band.Blue)
	if err != nil {
		return nil, err
	}
	return c.ToneMap(r.brightness, r.gamma), nil
}

// falseColorComposite builds the NIR/red/green composite. No tone mapping.
func (r *Renderer) falseColorComposite(stackPath string) (*Composite, error) {
	return composeBands(stackPath, band.NIR, band.Red, band.Green)
}

// composeBands reads three named bands from a stack, normalizes each to
// [0, 1] independently, and stacks them as the R, G, B channels.
func composeBands(stackPath string, rb, gb, bb band.Band) (*Composite, error) {
	channels := make([]*band.Grid, 0, 3)
	for _, b := range []band.Band{rb, gb, bb} {
		grid, err := raster.ReadStackBand(stackPath, b)
		if err != nil {
			return nil, err
		}
		channels = append(channels, grid.Normalize())
	}
	return NewComposite(channels[0], channels[1], channels[2])
}

func savePNG(path string, c *Composite) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := png.Encode(f, c.Image()); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
