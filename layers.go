package mediancut

import (
	"image"
	"image/color"
)

// GrayLayers returns one mask per palette color. A mask is 255 where the pixel
// at the same position belongs to that color's partition and 0 elsewhere.
func (p *Palette) GrayLayers(pixels []Color, width, height int) []*image.Gray {
	numChannels := len(p.colors)
	if numChannels == 0 || width <= 0 || height <= 0 || len(pixels) != width*height {
		return nil
	}
	out := make([]*image.Gray, numChannels)
	for ch := range numChannels {
		out[ch] = image.NewGray(image.Rect(0, 0, width, height))
	}
	for y := range height {
		for x := range width {
			if ch := p.Index(pixels[y*width+x]); ch >= 0 {
				out[ch].SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// RGBALayers is like GrayLayers but paints each layer in its palette color,
// using the mask as alpha.
func (p *Palette) RGBALayers(pixels []Color, width, height int) []*image.NRGBA {
	grays := p.GrayLayers(pixels, width, height)
	if grays == nil {
		return nil
	}
	out := make([]*image.NRGBA, len(grays))
	for ch, g := range grays {
		c := p.colors[ch]
		layer := image.NewNRGBA(image.Rect(0, 0, width, height))
		for y := range height {
			for x := range width {
				layer.SetNRGBA(x, y, color.NRGBA{R: c[Red], G: c[Green], B: c[Blue], A: g.GrayAt(x, y).Y})
			}
		}
		out[ch] = layer
	}
	return out
}

// Reconstruct composes gray layers back into an opaque image. The first
// palette color is the background; the remaining layers are blended on top
// in palette order.
func (p *Palette) Reconstruct(grayLayers []*image.Gray) *image.NRGBA {
	if len(grayLayers) == 0 || len(p.colors) == 0 {
		return image.NewNRGBA(image.Rectangle{})
	}
	bounds := grayLayers[0].Bounds()
	recon := image.NewNRGBA(bounds)
	numChannels := min(len(grayLayers), len(p.colors))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out := p.colors[0]
			for ch := 1; ch < numChannels; ch++ { // bottom -> top
				a := int(grayLayers[ch].GrayAt(x, y).Y)
				if a == 0 {
					continue
				}
				c := p.colors[ch]
				for k := Red; k <= Blue; k++ {
					out[k] = uint8((a*int(c[k]) + (255-a)*int(out[k]) + 127) / 255)
				}
			}
			recon.SetNRGBA(x, y, color.NRGBA{R: out[Red], G: out[Green], B: out[Blue], A: 255})
		}
	}
	return recon
}
