// Package mediancut reduces the colors of an image to a bounded palette with a
// slightly modified median cut algorithm.
//
// The pixels are partitioned into a binary tree of buckets. Each iteration
// splits the bucket whose widest color channel has the largest range, and the
// final image replaces every pixel by the average color of its bucket.
package mediancut

import (
	"errors"
	"fmt"
	"image/color"
)

// MaxPalette is the largest palette size accepted by Quantize and BuildPalette.
const MaxPalette = 128

var (
	// ErrPaletteSize is returned when the requested palette size is outside [1, MaxPalette].
	ErrPaletteSize = errors.New("palette size out of range")
	// ErrDimensions is returned when the pixel buffer does not match width*height.
	ErrDimensions = errors.New("pixel buffer does not match image dimensions")
)

// Channel indexes a component of a Color.
type Channel uint8

const (
	Red Channel = iota
	Green
	Blue
	Alpha
)

func (ch Channel) String() string {
	switch ch {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Alpha:
		return "alpha"
	default:
		return fmt.Sprintf("Channel(%d)", uint8(ch))
	}
}

// Color is a non-premultiplied RGBA value with 8 bits per channel.
type Color [4]uint8

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// NRGBA returns c as a color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c[Red], G: c[Green], B: c[Blue], A: c[Alpha]}
}

// ColorFromNRGBA converts a color.NRGBA to Color.
func ColorFromNRGBA(c color.NRGBA) Color {
	return Color{c.R, c.G, c.B, c.A}
}

// ColorModel converts any color.Color to Color.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	if mc, ok := c.(Color); ok {
		return mc
	}
	return ColorFromNRGBA(color.NRGBAModel.Convert(c).(color.NRGBA))
})

// Quantize performs median cut color quantization in place on pixels, which
// hold a width x height image in row-major order. After the call every pixel
// equals the average color of one of at most paletteCount partitions, with
// alpha set to 255.
func Quantize(paletteCount int, pixels []Color, width, height int) error {
	if err := checkPaletteSize(paletteCount); err != nil {
		return err
	}
	if width < 0 || height < 0 || len(pixels) != width*height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrDimensions, len(pixels), width, height)
	}
	p, err := BuildPalette(paletteCount, pixels)
	if err != nil {
		return err
	}
	p.Remap(pixels)
	return nil
}

// BuildPalette computes the partition tree for pixels without modifying them.
// The returned Palette maps any color to the average color of its partition.
func BuildPalette(paletteCount int, pixels []Color) (*Palette, error) {
	if err := checkPaletteSize(paletteCount); err != nil {
		return nil, err
	}

	// The tree reorders its working copy; pixels stay untouched.
	work := make([]Color, len(pixels))
	copy(work, pixels)

	t := newTree(work, paletteCount)
	for range paletteCount - 1 {
		i, span := t.largestLeaf()
		if span == 0 {
			// There are no more buckets that can be divided.
			break
		}
		t.cut(i)
	}
	t.computeAverages()
	return newPalette(t), nil
}

func checkPaletteSize(n int) error {
	if n < 1 || n > MaxPalette {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrPaletteSize, n, MaxPalette)
	}
	return nil
}
