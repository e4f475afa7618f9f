package imaging

import (
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations.
//
// It is used wherever a bucket key or a bucket average is reported:
//   - Hex: Compact "#RRGGBB" string, identical to the bucket key's Hex form
//   - RGB: 8-bit components
//   - HSL: Perceptual description for humans reading a report
type ColorResult struct {
	Hex string    `json:"hex"`
	RGB pixel.RGB `json:"rgb"`
	HSL HSLColor  `json:"hsl"`
}

// DescribeColor returns c in every reported representation.
//
// HSL is computed with go-colorful and truncated to whole degrees and
// percent, matching how image editors display it.
func DescribeColor(c pixel.RGB) ColorResult {
	h, s, l := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hsl()

	return ColorResult{
		Hex: pixel.Pack(c.R, c.G, c.B).Hex(),
		RGB: c,
		HSL: HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}
}

// ColorFrequency represents a template color and how much of the image it covers.
type ColorFrequency struct {
	Color      ColorResult `json:"color"`
	Pixels     int         `json:"pixels"`
	Percentage float64     `json:"percentage"` // Percentage of pixels with this color (0-100)
}

// PaletteResult lists the distinct colors of a template image.
//
// Every entry is one bucket of a mapping that uses this image as its
// template. Colors are sorted by pixel count, most common first.
type PaletteResult struct {
	TotalPixels  int              `json:"total_pixels"`
	UniqueColors int              `json:"unique_colors"`
	Colors       []ColorFrequency `json:"colors"`
}

// TemplatePalette counts the exact RGB colors of img.
//
// Parameters:
//   - img: The template image. Alpha is ignored.
//   - count: Maximum number of colors to return; zero or negative returns all.
//
// Unlike a quantizing palette extractor, colors are not grouped: two colors
// one unit apart are two buckets. Ties in pixel count are broken by key so
// the listing is deterministic.
func TemplatePalette(img image.Image, count int) *PaletteResult {
	keys := Keys(img)
	hist := keys.Histogram()

	ordered := make([]pixel.Key, 0, len(hist))
	for k := range hist {
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool {
		ni, nj := hist[ordered[i]], hist[ordered[j]]
		if ni != nj {
			return ni > nj
		}
		return ordered[i] < ordered[j]
	})

	if count > 0 && len(ordered) > count {
		ordered = ordered[:count]
	}

	total := len(keys.Keys)
	colors := make([]ColorFrequency, 0, len(ordered))
	for _, k := range ordered {
		colors = append(colors, ColorFrequency{
			Color:      DescribeColor(k.RGB()),
			Pixels:     hist[k],
			Percentage: float64(hist[k]) / float64(total) * 100,
		})
	}

	return &PaletteResult{
		TotalPixels:  total,
		UniqueColors: len(hist),
		Colors:       colors,
	}
}
