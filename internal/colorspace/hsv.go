package colorspace

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

// hsvSpace stores hue, saturation and value as 8-bit channels. Hue degrees
// [0,360) are scaled onto [0,255]; saturation and value [0,1] likewise.
type hsvSpace struct{}

func (hsvSpace) Mode() Mode     { return HSV }
func (hsvSpace) Integral() bool { return true }

func (hsvSpace) ToWorking(c pixel.RGB) Value {
	h, s, v := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hsv()
	return Value{
		float64(ToByte(h / 360.0 * 255.0)),
		float64(ToByte(s * 255.0)),
		float64(ToByte(v * 255.0)),
	}
}

func (hsvSpace) FromWorking(v Value) pixel.RGB {
	// A hue byte of 255 lands on exactly 360 degrees, which colorful.Hsv does
	// not wrap on its own.
	h := math.Mod(v[0]/255.0*360.0, 360.0)
	if h < 0 {
		h += 360.0
	}
	c := colorful.Hsv(h, clampUnit(v[1]/255.0), clampUnit(v[2]/255.0))
	return pixel.RGB{
		R: ToByte(c.R * 255.0),
		G: ToByte(c.G * 255.0),
		B: ToByte(c.B * 255.0),
	}
}

func (hsvSpace) Reduce(sum Value, count uint64) Value {
	return integralMean(sum, count)
}

func clampUnit(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
