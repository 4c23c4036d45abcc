package utils

import (
	"image"

	"github.com/disintegration/gift"
)

// FitImage scales img down so that neither side exceeds maxDim, keeping the
// aspect ratio. Images that already fit, and maxDim <= 0, are returned as is.
func FitImage(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img
	}
	g := gift.New(gift.ResizeToFit(maxDim, maxDim, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, img)
	return dst
}
