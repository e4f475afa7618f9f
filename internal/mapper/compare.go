package mapper

import (
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/image-template-mapper/internal/colorspace"
	"github.com/ironsheep/image-template-mapper/internal/engine"
	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

// Timing is the measured cost of one strategy.
type Timing struct {
	Strategy       string  `json:"strategy"`
	Runs           int     `json:"runs"`
	AverageSeconds float64 `json:"average_seconds"`
}

// Comparison reports a serial versus parallel run over the same inputs.
type Comparison struct {
	Mode          colorspace.Mode `json:"mode"`
	Width         int             `json:"width"`
	Height        int             `json:"height"`
	Pixels        int             `json:"pixels"`
	Buckets       int             `json:"buckets"`
	Timings       []Timing        `json:"timings"`
	MaxDifference float64         `json:"max_difference"`
	Tolerance     float64         `json:"tolerance"`

	// Serial is the reference result of the last serial run.
	Serial *engine.Result `json:"-"`
}

// Compare runs the serial strategy and a parallel strategy runs times each
// on identical grids, times them, and checks that their bucket means agree
// within engine.Tolerance.
//
// opts.Strategy is used as the parallel side when it is an engine.Parallel;
// otherwise a default engine.Parallel is used. On divergence the comparison
// is still returned together with an error wrapping engine.ErrDivergence.
func Compare(source, template image.Image, opts Options, runs int) (*Comparison, error) {
	if runs < 1 {
		runs = 1
	}

	src, tmpl, space, err := prepare(source, template, opts)
	if err != nil {
		return nil, err
	}

	par, ok := opts.Strategy.(engine.Parallel)
	if !ok {
		par = engine.Parallel{}
	}

	serialRes, serialTiming, err := timeRuns(src, tmpl, space, engine.Serial{}, runs)
	if err != nil {
		return nil, err
	}
	parRes, parTiming, err := timeRuns(src, tmpl, space, par, runs)
	if err != nil {
		return nil, err
	}

	tol := engine.Tolerance(space)
	cmp := &Comparison{
		Mode:      space.Mode(),
		Width:     tmpl.Width,
		Height:    tmpl.Height,
		Pixels:    len(tmpl.Pix),
		Buckets:   len(serialRes.Colors),
		Timings:   []Timing{serialTiming, parTiming},
		Tolerance: tol,
		Serial:    serialRes,
	}

	diff, err := engine.CompareColorMaps(serialRes.Colors, parRes.Colors, tol)
	cmp.MaxDifference = diff
	if err != nil {
		return cmp, fmt.Errorf("serial and parallel results differ: %w", err)
	}
	return cmp, nil
}

func timeRuns(src, tmpl *pixel.Grid, space colorspace.Space, s engine.Strategy, runs int) (*engine.Result, Timing, error) {
	var (
		res   *engine.Result
		total time.Duration
	)
	for i := 0; i < runs; i++ {
		start := time.Now()
		r, err := MapGrids(src, tmpl, space, s)
		if err != nil {
			return nil, Timing{}, fmt.Errorf("%s run %d: %w", s.Name(), i+1, err)
		}
		total += time.Since(start)
		res = r
	}

	return res, Timing{
		Strategy:       s.Name(),
		Runs:           runs,
		AverageSeconds: total.Seconds() / float64(runs),
	}, nil
}
