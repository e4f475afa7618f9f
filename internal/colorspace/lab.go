package colorspace

import (
	"math"

	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

// Reference white (D65, 2° observer) on the 0-100 XYZ scale.
const (
	whiteX = 95.047
	whiteY = 100.000
	whiteZ = 108.883
)

// Branch thresholds for the companding curves.
const (
	srgbDecodeThreshold = 0.04045
	srgbEncodeThreshold = 0.0031308
	labEpsilon          = 0.008856
	labKappa            = 7.787
	labOffset           = 16.0 / 116.0
)

// linearRGB maps an 8-bit sRGB channel to linear light on a 0-100 scale.
var linearRGB [256]float64

func init() {
	for i := range linearRGB {
		v := float64(i) / 255.0
		if v > srgbDecodeThreshold {
			v = math.Pow((v+0.055)/1.055, 2.4)
		} else {
			v = v / 12.92
		}
		linearRGB[i] = v * 100.0
	}
}

// RGBToLab converts an 8-bit sRGB pixel to L*a*b*.
func RGBToLab(c pixel.RGB) Value {
	r := linearRGB[c.R]
	g := linearRGB[c.G]
	b := linearRGB[c.B]

	x := r*0.4124 + g*0.3576 + b*0.1805
	y := r*0.2126 + g*0.7152 + b*0.0722
	z := r*0.0193 + g*0.1192 + b*0.9505

	fx := labCompress(x / whiteX)
	fy := labCompress(y / whiteY)
	fz := labCompress(z / whiteZ)

	return Value{
		116.0*fy - 16.0,
		500.0 * (fx - fy),
		200.0 * (fy - fz),
	}
}

// LabToRGB converts L*a*b* back to 8-bit sRGB, clipping out-of-gamut values.
func LabToRGB(v Value) pixel.RGB {
	fy := (v[0] + 16.0) / 116.0
	fx := v[1]/500.0 + fy
	fz := fy - v[2]/200.0

	x := labExpand(fx) * whiteX / 100.0
	y := labExpand(fy) * whiteY / 100.0
	z := labExpand(fz) * whiteZ / 100.0

	r := x*3.2406 + y*-1.5372 + z*-0.4986
	g := x*-0.9689 + y*1.8758 + z*0.0415
	b := x*0.0557 + y*-0.2040 + z*1.0570

	return pixel.RGB{
		R: ToByte(srgbEncode(r) * 255.0),
		G: ToByte(srgbEncode(g) * 255.0),
		B: ToByte(srgbEncode(b) * 255.0),
	}
}

func labCompress(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return labKappa*t + labOffset
}

// labExpand inverts labCompress. The branch is chosen on the cubed value.
func labExpand(f float64) float64 {
	if f3 := f * f * f; f3 > labEpsilon {
		return f3
	}
	return (f - labOffset) / labKappa
}

func srgbEncode(v float64) float64 {
	if v > srgbEncodeThreshold {
		return 1.055*math.Pow(v, 1.0/2.4) - 0.055
	}
	return 12.92 * v
}

// labSpace averages in floating point. a and b are signed around zero, so
// integer truncation would bias dark and saturated buckets.
type labSpace struct{}

func (labSpace) Mode() Mode     { return LAB }
func (labSpace) Integral() bool { return false }

func (labSpace) ToWorking(c pixel.RGB) Value   { return RGBToLab(c) }
func (labSpace) FromWorking(v Value) pixel.RGB { return LabToRGB(v) }

func (labSpace) Reduce(sum Value, count uint64) Value {
	n := float64(count)
	return Value{sum[0] / n, sum[1] / n, sum[2] / n}
}
