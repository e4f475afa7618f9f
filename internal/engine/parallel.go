package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/image-template-mapper/internal/colorspace"
	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

// Parallel is the fork-join strategy.
//
// Rows are split into bands. Each band accumulates into its own partial map;
// after every band has finished the partials are merged in row order, then
// reduced. Workers > 0 fixes the number of bands; zero defers the split to
// bild's parallel.Line, which sizes it from GOMAXPROCS.
type Parallel struct {
	Workers int
}

var _ Strategy = Parallel{}

func (Parallel) Name() string { return "parallel" }

func (p Parallel) Run(in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		colors ColorMap
		err    error
	)
	if in.Space.Integral() {
		colors, err = p.reduceIntegral(in)
	} else {
		colors, err = p.reduceFloat(in)
	}
	if err != nil {
		return nil, err
	}

	out, err := p.assemble(in.Keys, colors, in.Space)
	if err != nil {
		return nil, err
	}

	return &Result{
		Strategy: p.Name(),
		Mode:     in.Space.Mode(),
		Colors:   colors,
		Output:   out,
	}, nil
}

// forEachBand calls fn once per row band [lo, hi) and returns after every
// call has finished.
func (p Parallel) forEachBand(height int, fn func(lo, hi int)) {
	if p.Workers <= 0 {
		parallel.Line(height, fn)
		return
	}

	workers := min(p.Workers, height)
	if workers <= 1 {
		fn(0, height)
		return
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo, hi := splitRange(height, workers, w)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(lo, hi)
		}()
	}
	wg.Wait()
}

// splitRange returns the rows owned by worker w when height rows are split
// across workers as evenly as possible.
func splitRange(height, workers, w int) (int, int) {
	size := height / workers
	rem := height % workers
	lo := w*size + min(w, rem)
	hi := lo + size
	if w < rem {
		hi++
	}
	return lo, hi
}

// band is one worker's private partial accumulator.
type band[T any] struct {
	lo      int
	partial map[pixel.Key]*T
}

// accumulate runs add over every coordinate, one private partial per band,
// and returns the partials ordered by their first row.
func accumulate[T any](p Parallel, in Input, add func(acc *T, v colorspace.Value)) []band[T] {
	width := in.Keys.Width

	var (
		mu    sync.Mutex
		bands []band[T]
	)
	p.forEachBand(in.Keys.Height, func(lo, hi int) {
		partial := make(map[pixel.Key]*T)
		for i := lo * width; i < hi*width; i++ {
			k := in.Keys.Keys[i]
			acc, ok := partial[k]
			if !ok {
				acc = new(T)
				partial[k] = acc
			}
			add(acc, in.Space.ToWorking(in.Source.Pix[i]))
		}

		// One lock per band, after its accumulation is complete.
		mu.Lock()
		bands = append(bands, band[T]{lo: lo, partial: partial})
		mu.Unlock()
	})

	sort.Slice(bands, func(i, j int) bool { return bands[i].lo < bands[j].lo })
	return bands
}

// intAccumulator is an exact integer sum for integral working spaces.
type intAccumulator struct {
	sum   [3]uint64
	count uint64
}

func (p Parallel) reduceIntegral(in Input) (ColorMap, error) {
	bands := accumulate(p, in, func(acc *intAccumulator, v colorspace.Value) {
		acc.sum[0] += uint64(v[0])
		acc.sum[1] += uint64(v[1])
		acc.sum[2] += uint64(v[2])
		acc.count++
	})

	merged := make(map[pixel.Key]*intAccumulator)
	for _, b := range bands {
		for k, acc := range b.partial {
			m, ok := merged[k]
			if !ok {
				m = &intAccumulator{}
				merged[k] = m
			}
			for c := range m.sum {
				m.sum[c] += acc.sum[c]
			}
			m.count += acc.count
		}
	}

	colors := make(ColorMap, len(merged))
	for k, acc := range merged {
		if acc.count == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyBucket, k.Hex())
		}
		colors[k] = Bucket{
			Mean: colorspace.Value{
				float64(divRoundHalfEven(acc.sum[0], acc.count)),
				float64(divRoundHalfEven(acc.sum[1], acc.count)),
				float64(divRoundHalfEven(acc.sum[2], acc.count)),
			},
			Count: acc.count,
		}
	}
	return colors, nil
}

func (p Parallel) reduceFloat(in Input) (ColorMap, error) {
	bands := accumulate(p, in, func(acc *Accumulator, v colorspace.Value) {
		acc.Add(v)
	})

	merged := make(Buckets)
	for _, b := range bands {
		for k, acc := range b.partial {
			m, ok := merged[k]
			if !ok {
				m = &Accumulator{}
				merged[k] = m
			}
			m.Sum = m.Sum.Add(acc.Sum)
			m.Count += acc.Count
		}
	}
	return merged.Reduce(in.Space)
}

// divRoundHalfEven returns sum/n rounded to the nearest integer, ties to even.
func divRoundHalfEven(sum, n uint64) uint64 {
	q, r := sum/n, sum%n
	switch {
	case 2*r > n:
		q++
	case 2*r == n && q%2 == 1:
		q++
	}
	return q
}

// assemble scatters bucket colors band by band. Bands write disjoint rows.
func (p Parallel) assemble(keys *pixel.KeyGrid, colors ColorMap, space colorspace.Space) (*pixel.Grid, error) {
	lookup := resolve(colors, space)
	out := pixel.NewGrid(keys.Width, keys.Height)

	var (
		mu       sync.Mutex
		firstErr error
	)
	p.forEachBand(keys.Height, func(lo, hi int) {
		for i := lo * keys.Width; i < hi*keys.Width; i++ {
			c, ok := lookup[keys.Keys[i]]
			if !ok {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: %s", ErrMissingBucket, keys.Keys[i].Hex())
				}
				mu.Unlock()
				return
			}
			out.Pix[i] = c
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
