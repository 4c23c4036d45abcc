package utils

import (
	"fmt"
	"image"

	"github.com/setanarut/mediancut"
)

type Options struct {
	// Number of colors in the output image, 1 to mediancut.MaxPalette.
	PaletteSize int
	// How the palette is chosen. Only median cut is deterministic.
	Method PaletteMethod
	// Fit the image into MaxDimension x MaxDimension before quantizing.
	// 0 keeps the original size.
	MaxDimension int
}

func DefaultOptions() Options {
	return Options{
		PaletteSize: 4,
		Method:      PaletteMethodMedianCut,
	}
}

func (o Options) Validate() error {
	if o.PaletteSize < 1 || o.PaletteSize > mediancut.MaxPalette {
		return fmt.Errorf("%w: %d (want 1..%d)", mediancut.ErrPaletteSize, o.PaletteSize, mediancut.MaxPalette)
	}
	if o.MaxDimension < 0 {
		return fmt.Errorf("negative maximum dimension %d", o.MaxDimension)
	}
	switch o.Method {
	case PaletteMethodMedianCut, PaletteMethodKMeans, PaletteMethodDominantColor:
	default:
		return fmt.Errorf("unknown palette method %d", int(o.Method))
	}
	return nil
}

type Result struct {
	Width, Height int
	// Source holds the pixels that were quantized, after any resizing.
	Source []mediancut.Color
	Pixels []mediancut.Color
	// Colors lists the palette. Entries may repeat for median cut.
	Colors []mediancut.Color
	// Palette is the partition tree. Nil unless Method is PaletteMethodMedianCut.
	Palette *mediancut.Palette
}

// Image returns the quantized pixels as an image.
func (r *Result) Image() *image.NRGBA {
	img, _ := ImageFromPixels(r.Pixels, r.Width, r.Height)
	return img
}

// QuantizeImage reduces img to at most opt.PaletteSize colors.
func QuantizeImage(img image.Image, opt Options) (*Result, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	img = FitImage(img, opt.MaxDimension)
	source, w, h := PixelsFromImage(img)
	res := &Result{
		Width:  w,
		Height: h,
		Source: source,
		Pixels: append([]mediancut.Color(nil), source...),
	}

	if opt.Method == PaletteMethodMedianCut {
		p, err := mediancut.BuildPalette(opt.PaletteSize, source)
		if err != nil {
			return nil, err
		}
		p.Remap(res.Pixels)
		res.Palette = p
		res.Colors = p.Colors()
		return res, nil
	}

	colors, err := ExtractPalette(img, source, opt.PaletteSize, opt.Method)
	if err != nil {
		return nil, err
	}
	RemapNearest(res.Pixels, colors)
	res.Colors = colors
	return res, nil
}
