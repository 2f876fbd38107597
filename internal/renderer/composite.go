package renderer

import (
	"fmt"
	"image"
	"math"

	"snowstack/internal/band"
)

// Composite is an RGB image with channel values in [0, 1], assembled from
// three normalized bands.
type Composite struct {
	Width  int
	Height int
	R      []float64
	G      []float64
	B      []float64
}

// NewComposite stacks three normalized grids into the red, green, and blue
// channels of a composite. The grids must share dimensions.
func NewComposite(r, g, b *band.Grid) (*Composite, error) {
	if !r.SameShape(g) || !r.SameShape(b) {
		return nil, fmt.Errorf("channel dimensions differ: %dx%d, %dx%d, %dx%d",
			r.Width, r.Height, g.Width, g.Height, b.Width, b.Height)
	}
	return &Composite{
		Width:  r.Width,
		Height: r.Height,
		R:      r.Pixels,
		G:      g.Pixels,
		B:      b.Pixels,
	}, nil
}

// ToneMapValue applies brightness scaling and gamma correction to a single
// channel value: clip(v*brightness, 0, 1) raised to 1/gamma.
func ToneMapValue(v, brightness, gamma float64) float64 {
	brightened := v * brightness
	if brightened < 0 {
		brightened = 0
	} else if brightened > 1 {
		brightened = 1
	}
	return math.Pow(brightened, 1/gamma)
}

// ToneMap applies ToneMapValue to every channel value in place and returns
// the composite for chaining. Only the true-color path is tone mapped.
func (c *Composite) ToneMap(brightness, gamma float64) *Composite {
	for _, ch := range [][]float64{c.R, c.G, c.B} {
		for i, v := range ch {
			ch[i] = ToneMapValue(v, brightness, gamma)
		}
	}
	return c
}

// Image converts the composite to an 8-bit RGBA image for PNG encoding.
func (c *Composite) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			i := y*c.Width + x
			o := img.PixOffset(x, y)
			img.Pix[o+0] = Quantize(c.R[i])
			img.Pix[o+1] = Quantize(c.G[i])
			img.Pix[o+2] = Quantize(c.B[i])
			img.Pix[o+3] = 0xff
		}
	}
	return img
}

// Quantize maps a [0, 1] channel value to an 8-bit sample, rounding to
// nearest and clamping out-of-range input.
func Quantize(v float64) uint8 {
	scaled := math.Round(v * 255)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
