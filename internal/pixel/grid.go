package pixel

import (
	"errors"
	"fmt"
)

var (
	// ErrChannels is returned for buffers that are not 3-channel RGB.
	ErrChannels = errors.New("pixel: image must have exactly 3 channels")

	// ErrShape is returned when a buffer does not match its stated dimensions.
	ErrShape = errors.New("pixel: buffer does not match dimensions")
)

// RGB is one 8-bit-per-channel pixel.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Grid is a row-major image of RGB pixels.
type Grid struct {
	Width  int
	Height int
	Pix    []RGB
}

// NewGrid allocates a black grid of the given size.
func NewGrid(width, height int) *Grid {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Grid{Width: width, Height: height, Pix: make([]RGB, width*height)}
}

// FromBytes builds a Grid from an interleaved buffer (width×height×channels).
//
// Only 3-channel buffers are accepted. Callers holding RGBA data must
// normalize it to RGB first; a 4-channel buffer is an error, not a silent
// alpha drop.
func FromBytes(width, height, channels int, data []byte) (*Grid, error) {
	if channels != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrChannels, channels)
	}
	if width < 0 || height < 0 || len(data) != width*height*3 {
		return nil, fmt.Errorf("%w: %dx%dx3 needs %d bytes, got %d",
			ErrShape, width, height, width*height*3, len(data))
	}

	g := NewGrid(width, height)
	for i := range g.Pix {
		g.Pix[i] = RGB{R: data[i*3], G: data[i*3+1], B: data[i*3+2]}
	}
	return g, nil
}

// Bytes returns the grid as an interleaved RGB buffer.
func (g *Grid) Bytes() []byte {
	out := make([]byte, len(g.Pix)*3)
	for i, p := range g.Pix {
		out[i*3] = p.R
		out[i*3+1] = p.G
		out[i*3+2] = p.B
	}
	return out
}

// At returns the pixel at (x, y).
func (g *Grid) At(x, y int) RGB {
	return g.Pix[y*g.Width+x]
}

// Set writes the pixel at (x, y).
func (g *Grid) Set(x, y int, c RGB) {
	g.Pix[y*g.Width+x] = c
}

// SameSize reports whether g and o have equal dimensions.
func (g *Grid) SameSize(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height
}
