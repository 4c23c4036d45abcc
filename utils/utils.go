package utils

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/mediancut"
)

const maxKMeansSamples = 12000

type PaletteMethod int

const (
	PaletteMethodMedianCut PaletteMethod = iota
	PaletteMethodKMeans
	PaletteMethodDominantColor
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	case PaletteMethodDominantColor:
		return "dominantcolor"
	default:
		return "mediancut"
	}
}

// ParsePaletteMethod accepts the names returned by PaletteMethod.String.
func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch strings.ToLower(s) {
	case "mediancut", "median":
		return PaletteMethodMedianCut, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	case "dominantcolor", "dominant":
		return PaletteMethodDominantColor, nil
	}
	return 0, fmt.Errorf("unknown palette method %q", s)
}

func toColorful(c mediancut.Color) colorful.Color {
	return colorful.Color{
		R: float64(c[mediancut.Red]) / 255.0,
		G: float64(c[mediancut.Green]) / 255.0,
		B: float64(c[mediancut.Blue]) / 255.0,
	}
}

func fromColorful(c colorful.Color) mediancut.Color {
	r, g, b := c.Clamped().RGB255()
	return mediancut.Color{r, g, b, 255}
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []mediancut.Color) {
	slices.SortStableFunc(palette, func(a, b mediancut.Color) int {
		ri, gi, bi := toColorful(a).LinearRgb()
		rj, gj, bj := toColorful(b).LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

// ExtractDominantPalette returns up to k of the most frequent colors found
// by dominantcolor.
func ExtractDominantPalette(img image.Image, k int) []mediancut.Color {
	if k <= 0 {
		return nil
	}
	candidates := dominantcolor.FindWeight(img, k)
	out := make([]mediancut.Color, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		out = append(out, fromColorful(col))
	}
	return out
}

// ExtractKMeansPalette clusters pixels in RGB space and returns up
// to k cluster centers, most populated first.
func ExtractKMeansPalette(pixels []mediancut.Color, k int) ([]mediancut.Color, error) {
	if k <= 0 || len(pixels) == 0 {
		return nil, nil
	}

	// Subsample to keep kmeans tractable on large images.
	step := 1
	if len(pixels) > maxKMeansSamples {
		step = len(pixels)/maxKMeansSamples + 1
	}

	dataset := make(clusters.Observations, 0, min(len(pixels), maxKMeansSamples))
	for i := 0; i < len(pixels); i += step {
		c := pixels[i]
		dataset = append(dataset, clusters.Coordinates{
			float64(c[mediancut.Red]) / 255.0,
			float64(c[mediancut.Green]) / 255.0,
			float64(c[mediancut.Blue]) / 255.0,
		})
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, min(k, len(dataset)))
	if err != nil {
		return nil, fmt.Errorf("kmeans: %w", err)
	}

	// Sort by cluster population so dominant colors come first.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	out := make([]mediancut.Color, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		out = append(out, fromColorful(colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}))
	}
	return out, nil
}

// ExtractPalette picks at most k colors for pixels with a method other than
// median cut. Median cut palettes come from mediancut.BuildPalette.
func ExtractPalette(img image.Image, pixels []mediancut.Color, k int, method PaletteMethod) ([]mediancut.Color, error) {
	switch method {
	case PaletteMethodKMeans:
		p, err := ExtractKMeansPalette(pixels, k)
		if err == nil && len(p) != 0 {
			return p, nil
		}
		log.Println("palette warning: kmeans returned empty palette, falling back to dominantcolor")
		return ExtractDominantPalette(img, k), nil
	case PaletteMethodDominantColor:
		return ExtractDominantPalette(img, k), nil
	default:
		return nil, fmt.Errorf("method %v does not produce a flat palette", method)
	}
}

// RemapNearest replaces every pixel by the palette color with the smallest
// squared RGB distance. Alpha is set to 255.
func RemapNearest(pixels []mediancut.Color, palette []mediancut.Color) {
	if len(palette) == 0 {
		return
	}
	cache := make(map[mediancut.Color]mediancut.Color)
	for i, c := range pixels {
		c[mediancut.Alpha] = 255
		if q, ok := cache[c]; ok {
			pixels[i] = q
			continue
		}
		best := palette[0]
		bestDist := -1
		for _, p := range palette {
			dr := int(c[mediancut.Red]) - int(p[mediancut.Red])
			dg := int(c[mediancut.Green]) - int(p[mediancut.Green])
			db := int(c[mediancut.Blue]) - int(p[mediancut.Blue])
			if d := dr*dr + dg*dg + db*db; bestDist < 0 || d < bestDist {
				best, bestDist = p, d
			}
		}
		best[mediancut.Alpha] = 255
		cache[c] = best
		pixels[i] = best
	}
}

// DistinctColors returns the distinct colors of pixels in first-seen order.
func DistinctColors(pixels []mediancut.Color) []mediancut.Color {
	seen := make(map[mediancut.Color]struct{})
	var out []mediancut.Color
	for _, c := range pixels {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// SavePalette writes palette as a row of tileSize x tileSize squares.
func SavePalette(palette []mediancut.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * len(palette)
	h := tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for i, c := range palette {
		x0 := i * tileSize
		x1 := x0 + tileSize
		for y := range h {
			for x := x0; x < x1; x++ {
				img.SetRGBA(x, y, color.RGBA{R: c[mediancut.Red], G: c[mediancut.Green], B: c[mediancut.Blue], A: 255})
			}
		}
	}

	return SaveImage(img, filename)
}
