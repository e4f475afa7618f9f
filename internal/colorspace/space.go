// Package colorspace provides the working color spaces in which bucket
// averages are computed.
//
// A Space is selected once per mapping and converts between 8-bit RGB and
// its working representation. Three spaces exist:
//
//   - RGB: identity; channels stay integral in [0,255].
//   - HSV: hue, saturation and value, each quantized to [0,255].
//   - LAB: CIE L*a*b* against a D65 white point; L in [0,100], a and b signed.
//
// # Rounding
//
// Every conversion that lands on an 8-bit channel clamps to [0,255] and then
// rounds half to even. Integral spaces round their bucket means the same way;
// LAB keeps its means in floating point until the final RGB conversion.
package colorspace

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

// ErrUnsupportedMode is returned for an unknown color space selector.
var ErrUnsupportedMode = errors.New("colorspace: unsupported mode")

// Mode selects a working color space.
type Mode int

const (
	RGB Mode = iota
	HSV
	LAB
)

// Modes lists every supported mode in selector order.
var Modes = []Mode{RGB, HSV, LAB}

func (m Mode) String() string {
	switch m {
	case RGB:
		return "RGB"
	case HSV:
		return "HSV"
	case LAB:
		return "LAB"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	if m < RGB || m > LAB {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name with ParseMode.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode parses "RGB", "HSV" or "LAB", ignoring case and surrounding
// space. Anything else is rejected; there is no default.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RGB":
		return RGB, nil
	case "HSV":
		return HSV, nil
	case "LAB":
		return LAB, nil
	}
	return 0, fmt.Errorf("%w: %q (want RGB, HSV or LAB)", ErrUnsupportedMode, s)
}

// Value is one pixel in a working space.
type Value [3]float64

// Add returns the channel-wise sum of v and o.
func (v Value) Add(o Value) Value {
	return Value{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Space converts pixels to and from a working space and reduces bucket sums.
type Space interface {
	Mode() Mode

	// Integral reports whether working values are whole numbers in [0,255].
	// Such spaces can be summed exactly in integers.
	Integral() bool

	ToWorking(c pixel.RGB) Value
	FromWorking(v Value) pixel.RGB

	// Reduce turns a channel sum over count pixels into the bucket mean.
	// count is never zero.
	Reduce(sum Value, count uint64) Value
}

// For returns the Space for m.
func For(m Mode) (Space, error) {
	switch m {
	case RGB:
		return rgbSpace{}, nil
	case HSV:
		return hsvSpace{}, nil
	case LAB:
		return labSpace{}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedMode, m)
}

// ToByte clamps f to [0,255] and rounds half to even. NaN maps to 0.
func ToByte(f float64) uint8 {
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(math.RoundToEven(f))
}

// integralMean rounds the mean of an integral space half to even.
func integralMean(sum Value, count uint64) Value {
	n := float64(count)
	return Value{
		math.RoundToEven(sum[0] / n),
		math.RoundToEven(sum[1] / n),
		math.RoundToEven(sum[2] / n),
	}
}

type rgbSpace struct{}

func (rgbSpace) Mode() Mode     { return RGB }
func (rgbSpace) Integral() bool { return true }

func (rgbSpace) ToWorking(c pixel.RGB) Value {
	return Value{float64(c.R), float64(c.G), float64(c.B)}
}

func (rgbSpace) FromWorking(v Value) pixel.RGB {
	return pixel.RGB{R: ToByte(v[0]), G: ToByte(v[1]), B: ToByte(v[2])}
}

func (rgbSpace) Reduce(sum Value, count uint64) Value {
	return integralMean(sum, count)
}
