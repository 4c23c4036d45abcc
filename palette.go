package mediancut

import (
	"image"
	"image/color"
	"image/draw"
)

// Palette is a frozen partition tree. Every color maps to the average color
// of the leaf bucket it routes to.
type Palette struct {
	t *tree
	// index maps a node to its position in colors, or -1 for split nodes
	// and empty buckets.
	index  []int
	colors []Color
}

func newPalette(t *tree) *Palette {
	p := &Palette{t: t, index: make([]int, len(t.nodes))}
	for i, n := range t.nodes {
		if !n.leaf || len(n.bucket.pixels) == 0 {
			p.index[i] = -1
			continue
		}
		p.index[i] = len(p.colors)
		p.colors = append(p.colors, n.bucket.avg)
	}
	return p
}

// Len returns the number of non-empty partitions.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Colors returns the average color of every non-empty partition in creation
// order. Two partitions may share the same average.
func (p *Palette) Colors() []Color {
	return append([]Color(nil), p.colors...)
}

// Lookup returns the average color of the partition c belongs to.
func (p *Palette) Lookup(c Color) Color {
	return p.t.lookup(c)
}

// Index returns the position in Colors of the partition c belongs to, or -1
// if c routes to an empty partition.
func (p *Palette) Index(c Color) int {
	return p.index[p.t.leafOf(c)]
}

// Remap replaces every pixel by its partition average.
func (p *Palette) Remap(pixels []Color) {
	for i, c := range pixels {
		pixels[i] = p.t.lookup(c)
	}
}

// Quantizer implements draw.Quantizer with median cut, so it can be passed
// to image/gif as Options.Quantizer.
type Quantizer struct{}

var _ draw.Quantizer = Quantizer{}

// Quantize appends up to cap(p)-len(p) colors to p, capped at MaxPalette.
func (Quantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	n := min(cap(p)-len(p), MaxPalette)
	if n < 1 {
		return p
	}
	pal, err := BuildPalette(n, pixelsOf(m))
	if err != nil {
		return p
	}
	for _, c := range pal.colors {
		p = append(p, c.NRGBA())
	}
	return p
}

func pixelsOf(m image.Image) []Color {
	b := m.Bounds()
	pixels := make([]Color, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pixels = append(pixels, ColorModel.Convert(m.At(x, y)).(Color))
		}
	}
	return pixels
}
