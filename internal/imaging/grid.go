package imaging

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

// ErrUnknownFilter is returned by ParseFilter for an unknown filter name.
var ErrUnknownFilter = errors.New("unknown resampling filter")

// DefaultFilter is the filter used to resize the color image to the
// template. It is a bicubic filter, the usual default for photo resizing.
const DefaultFilter = "catmullrom"

var filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

// FilterNames returns the accepted filter names in sorted order.
func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFilter resolves a filter name. An empty name selects DefaultFilter.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultFilter
	}
	f, ok := filters[name]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("%w: %q (want one of %s)",
			ErrUnknownFilter, name, strings.Join(FilterNames(), ", "))
	}
	return f, nil
}

// Resize returns img resampled to width×height. An image that already has
// those dimensions is returned unchanged.
func Resize(img image.Image, width, height int, filter imaging.ResampleFilter) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return imaging.Resize(img, width, height, filter)
}

// ToGrid copies img into a 3-channel grid anchored at (0,0). Alpha is
// read non-premultiplied and then dropped.
func ToGrid(img image.Image) *pixel.Grid {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	g := pixel.NewGrid(w, h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			g.Pix[y*w+x] = pixel.RGB{R: row[x*4], G: row[x*4+1], B: row[x*4+2]}
		}
	}
	return g
}

// FromGrid converts a grid into an opaque NRGBA image.
func FromGrid(g *pixel.Grid) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i, p := range g.Pix {
		img.Pix[i*4] = p.R
		img.Pix[i*4+1] = p.G
		img.Pix[i*4+2] = p.B
		img.Pix[i*4+3] = 0xFF
	}
	return img
}

// Keys packs the pixels of img into a key grid.
func Keys(img image.Image) *pixel.KeyGrid {
	return pixel.PackGrid(ToGrid(img))
}
