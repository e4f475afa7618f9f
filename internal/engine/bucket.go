package engine

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-template-mapper/internal/colorspace"
	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

var (
	// ErrShapeMismatch is returned when the template and source grids differ in size.
	ErrShapeMismatch = errors.New("engine: template and source dimensions differ")

	// ErrEmptyBucket is returned when a bucket has no contributing pixels.
	ErrEmptyBucket = errors.New("engine: bucket has no source pixels")

	// ErrMissingBucket is returned when a template key has no reduced color.
	ErrMissingBucket = errors.New("engine: no color for template key")
)

// Accumulator is the running sum and count of one bucket.
type Accumulator struct {
	Sum   colorspace.Value
	Count uint64
}

// Add folds one working-space pixel into the accumulator.
func (a *Accumulator) Add(v colorspace.Value) {
	a.Sum = a.Sum.Add(v)
	a.Count++
}

// Buckets maps a template key to its accumulator.
type Buckets map[pixel.Key]*Accumulator

// Bucket is a reduced bucket: its mean in the working space and the number
// of source pixels behind it.
type Bucket struct {
	Mean  colorspace.Value `json:"mean"`
	Count uint64           `json:"count"`
}

// ColorMap maps a template key to its reduced bucket.
type ColorMap map[pixel.Key]Bucket

// checkShape verifies that keys and src describe the same coordinates.
func checkShape(keys *pixel.KeyGrid, src *pixel.Grid) error {
	if keys == nil || src == nil {
		return fmt.Errorf("%w: missing grid", ErrShapeMismatch)
	}
	if keys.Width != src.Width || keys.Height != src.Height {
		return fmt.Errorf("%w: template %dx%d, source %dx%d",
			ErrShapeMismatch, keys.Width, keys.Height, src.Width, src.Height)
	}
	if len(keys.Keys) != len(src.Pix) || len(src.Pix) != src.Width*src.Height {
		return fmt.Errorf("%w: %d keys for %d pixels", ErrShapeMismatch, len(keys.Keys), len(src.Pix))
	}
	return nil
}

// BuildBuckets groups the source pixels by the template key at the same
// coordinate. The result does not depend on iteration order beyond
// floating-point rounding.
func BuildBuckets(keys *pixel.KeyGrid, src *pixel.Grid, space colorspace.Space) (Buckets, error) {
	if err := checkShape(keys, src); err != nil {
		return nil, err
	}

	buckets := make(Buckets)
	for i, k := range keys.Keys {
		acc, ok := buckets[k]
		if !ok {
			acc = &Accumulator{}
			buckets[k] = acc
		}
		acc.Add(space.ToWorking(src.Pix[i]))
	}
	return buckets, nil
}

// Reduce averages every bucket in the given space.
func (b Buckets) Reduce(space colorspace.Space) (ColorMap, error) {
	colors := make(ColorMap, len(b))
	for k, acc := range b {
		if acc == nil || acc.Count == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyBucket, k.Hex())
		}
		colors[k] = Bucket{Mean: space.Reduce(acc.Sum, acc.Count), Count: acc.Count}
	}
	return colors, nil
}

// resolve converts every bucket mean back to RGB once.
func resolve(colors ColorMap, space colorspace.Space) map[pixel.Key]pixel.RGB {
	lookup := make(map[pixel.Key]pixel.RGB, len(colors))
	for k, b := range colors {
		lookup[k] = space.FromWorking(b.Mean)
	}
	return lookup
}

// Assemble writes, for every coordinate of the template, the RGB color of
// its bucket. The output has the template's dimensions.
func Assemble(keys *pixel.KeyGrid, colors ColorMap, space colorspace.Space) (*pixel.Grid, error) {
	lookup := resolve(colors, space)

	out := pixel.NewGrid(keys.Width, keys.Height)
	for i, k := range keys.Keys {
		c, ok := lookup[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingBucket, k.Hex())
		}
		out.Pix[i] = c
	}
	return out, nil
}
