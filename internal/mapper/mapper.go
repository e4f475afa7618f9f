// Package mapper runs one complete template mapping: it sizes the color image
// to the template, packs the template into keys, and hands both grids to an
// execution strategy.
package mapper

import (
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/image-template-mapper/internal/colorspace"
	"github.com/ironsheep/image-template-mapper/internal/engine"
	"github.com/ironsheep/image-template-mapper/internal/imaging"
	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

// Options configures a mapping.
type Options struct {
	// Mode is the working color space for averaging.
	Mode colorspace.Mode

	// Strategy runs the averaging. Nil selects engine.Serial.
	Strategy engine.Strategy

	// Filter names the resampling filter used to resize the color image;
	// empty selects imaging.DefaultFilter.
	Filter string
}

func (o Options) strategy() engine.Strategy {
	if o.Strategy == nil {
		return engine.Serial{}
	}
	return o.Strategy
}

// Result is a finished mapping.
type Result struct {
	*engine.Result

	// Image is the output as an opaque NRGBA image, template-sized.
	Image *image.NRGBA

	// Elapsed covers the strategy run only, not resizing or packing.
	Elapsed time.Duration
}

// Map recolors template with the palette of source.
//
// source is resized to the template's dimensions first, so the two images
// may differ in size. The mode and filter are validated before any pixel
// work is done.
func Map(source, template image.Image, opts Options) (*Result, error) {
	src, tmpl, space, err := prepare(source, template, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := MapGrids(src, tmpl, space, opts.strategy())
	if err != nil {
		return nil, err
	}

	return &Result{
		Result:  res,
		Image:   imaging.FromGrid(res.Output),
		Elapsed: time.Since(start),
	}, nil
}

// MapGrids maps pre-decoded grids. Unlike Map it does not resize: the grids
// must already agree in size.
func MapGrids(source, template *pixel.Grid, space colorspace.Space, strategy engine.Strategy) (*engine.Result, error) {
	if !source.SameSize(template) {
		return nil, fmt.Errorf("%w: template %dx%d, source %dx%d", engine.ErrShapeMismatch,
			template.Width, template.Height, source.Width, source.Height)
	}
	if strategy == nil {
		strategy = engine.Serial{}
	}

	return strategy.Run(engine.Input{
		Keys:   pixel.PackGrid(template),
		Source: source,
		Space:  space,
	})
}

// prepare validates opts and returns the size-aligned source and template grids.
func prepare(source, template image.Image, opts Options) (*pixel.Grid, *pixel.Grid, colorspace.Space, error) {
	space, err := colorspace.For(opts.Mode)
	if err != nil {
		return nil, nil, nil, err
	}
	filter, err := imaging.ParseFilter(opts.Filter)
	if err != nil {
		return nil, nil, nil, err
	}

	tb := template.Bounds()
	resized := imaging.Resize(source, tb.Dx(), tb.Dy(), filter)
	return imaging.ToGrid(resized), imaging.ToGrid(template), space, nil
}
