package pixel

import (
	"fmt"
	"image/color"
)

// Key is an RGB triple packed into a single integer, used as a bucket key.
type Key uint32

// Pack packs an RGB triple into a Key.
func Pack(r, g, b uint8) Key {
	return Key(r)<<16 | Key(g)<<8 | Key(b)
}

// Unpack is the exact inverse of Pack.
func Unpack(k Key) (r, g, b uint8) {
	return uint8(k >> 16), uint8(k >> 8), uint8(k)
}

// PackColor packs any color.Color. The color is read through the
// non-premultiplied NRGBA model and its alpha is discarded, so a
// half-transparent red and an opaque red share a key.
func PackColor(c color.Color) Key {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pack(n.R, n.G, n.B)
}

// RGB returns the triple the key was packed from.
func (k Key) RGB() RGB {
	r, g, b := Unpack(k)
	return RGB{R: r, G: g, B: b}
}

// Hex formats the key as "#RRGGBB".
func (k Key) Hex() string {
	return fmt.Sprintf("#%06X", uint32(k)&0xFFFFFF)
}

// KeyGrid is the template image reduced to one key per coordinate.
type KeyGrid struct {
	Width  int
	Height int
	Keys   []Key
}

// PackGrid packs every pixel of g. It is computed once per mapping and never
// per source pixel.
func PackGrid(g *Grid) *KeyGrid {
	keys := make([]Key, len(g.Pix))
	for i, p := range g.Pix {
		keys[i] = Pack(p.R, p.G, p.B)
	}
	return &KeyGrid{Width: g.Width, Height: g.Height, Keys: keys}
}

// At returns the key at (x, y).
func (kg *KeyGrid) At(x, y int) Key {
	return kg.Keys[y*kg.Width+x]
}

// Histogram counts the pixels carrying each distinct key.
func (kg *KeyGrid) Histogram() map[Key]int {
	counts := make(map[Key]int)
	for _, k := range kg.Keys {
		counts[k]++
	}
	return counts
}
