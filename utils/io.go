package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/setanarut/mediancut"
	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ReadImage decodes the image at path. PNG, JPEG, GIF, BMP, TIFF, WebP and
// QOI are recognized.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// SaveImage encodes img to filename. The format follows the extension and
// defaults to PNG.
func SaveImage(img image.Image, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	case ".gif":
		err = encodeGIF(f, img)
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	case ".qoi":
		err = qoi.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// encodeGIF keeps the colors of an already quantized image exact. Images with
// more than 256 colors go through the median cut quantizer without dithering.
func encodeGIF(f *os.File, img image.Image) error {
	b := img.Bounds()
	seen := make(map[color.NRGBA]struct{})
	var pal color.Palette
	for y := b.Min.Y; y < b.Max.Y && len(pal) <= 256; y++ {
		for x := b.Min.X; x < b.Max.X && len(pal) <= 256; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				pal = append(pal, c)
			}
		}
	}
	if len(pal) == 0 || len(pal) > 256 {
		return gif.Encode(f, img, &gif.Options{
			NumColors: mediancut.MaxPalette,
			Quantizer: mediancut.Quantizer{},
			Drawer:    draw.Src,
		})
	}
	dst := image.NewPaletted(b, pal)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return gif.Encode(f, dst, nil)
}

// PixelsFromImage copies img into a row-major pixel buffer of
// non-premultiplied colors.
func PixelsFromImage(img image.Image) (pixels []mediancut.Color, width, height int) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	pixels = make([]mediancut.Color, 0, width*height)
	for y := range height {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for x := 0; x < len(row); x += 4 {
			pixels = append(pixels, mediancut.Color{row[x], row[x+1], row[x+2], row[x+3]})
		}
	}
	return pixels, width, height
}

// ImageFromPixels builds an NRGBA image from a row-major pixel buffer.
func ImageFromPixels(pixels []mediancut.Color, width, height int) (*image.NRGBA, error) {
	if width < 0 || height < 0 || len(pixels) != width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", mediancut.ErrDimensions, len(pixels), width, height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, c := range pixels {
		copy(img.Pix[i*4:i*4+4], c[:])
	}
	return img, nil
}
