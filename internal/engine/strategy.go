package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ironsheep/image-template-mapper/internal/colorspace"
	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

// LabTolerance is the largest per-channel difference allowed between Serial
// and Parallel LAB bucket means. Integral spaces must match exactly.
const LabTolerance = 1e-6

// ErrDivergence is returned when two color maps disagree beyond tolerance.
var ErrDivergence = errors.New("engine: strategies diverge")

// ErrUnknownStrategy is returned by StrategyByName for an unknown name.
var ErrUnknownStrategy = errors.New("engine: unknown strategy")

// Input is one mapping request. Keys and Source are read-only for the
// duration of Run.
type Input struct {
	Keys   *pixel.KeyGrid
	Source *pixel.Grid
	Space  colorspace.Space
}

// Result is the outcome of one mapping.
type Result struct {
	Strategy string
	Mode     colorspace.Mode
	Colors   ColorMap
	Output   *pixel.Grid
}

// Strategy runs build, reduce and assemble over an Input.
type Strategy interface {
	Name() string
	Run(in Input) (*Result, error)
}

func (in Input) validate() error {
	if in.Space == nil {
		return fmt.Errorf("%w: no color space", colorspace.ErrUnsupportedMode)
	}
	return checkShape(in.Keys, in.Source)
}

// Serial is the single-goroutine reference strategy.
type Serial struct{}

var _ Strategy = Serial{}

func (Serial) Name() string { return "serial" }

func (s Serial) Run(in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	buckets, err := BuildBuckets(in.Keys, in.Source, in.Space)
	if err != nil {
		return nil, err
	}
	colors, err := buckets.Reduce(in.Space)
	if err != nil {
		return nil, err
	}
	out, err := Assemble(in.Keys, colors, in.Space)
	if err != nil {
		return nil, err
	}

	return &Result{
		Strategy: s.Name(),
		Mode:     in.Space.Mode(),
		Colors:   colors,
		Output:   out,
	}, nil
}

// StrategyNames lists the names StrategyByName accepts.
var StrategyNames = []string{"serial", "parallel"}

// StrategyByName returns "serial" or "parallel". workers only applies to
// the parallel strategy; zero lets the runtime pick.
func StrategyByName(name string, workers int) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "serial":
		return Serial{}, nil
	case "parallel":
		return Parallel{Workers: workers}, nil
	}
	return nil, fmt.Errorf("%w: %q (want %s)", ErrUnknownStrategy, name, strings.Join(StrategyNames, " or "))
}

// Tolerance returns the allowed Serial/Parallel divergence for a space.
func Tolerance(space colorspace.Space) float64 {
	if space.Integral() {
		return 0
	}
	return LabTolerance
}

// CompareColorMaps returns the largest per-channel difference between the
// means of a and b. Both must cover the same keys with the same counts, and
// the difference must not exceed tol.
func CompareColorMaps(a, b ColorMap, tol float64) (float64, error) {
	if len(a) != len(b) {
		return math.Inf(1), fmt.Errorf("%w: %d buckets vs %d", ErrDivergence, len(a), len(b))
	}

	var maxDiff float64
	for _, k := range SortedKeys(a) {
		ba := a[k]
		bb, ok := b[k]
		if !ok {
			return math.Inf(1), fmt.Errorf("%w: bucket %s missing", ErrDivergence, k.Hex())
		}
		if ba.Count != bb.Count {
			return math.Inf(1), fmt.Errorf("%w: bucket %s counts %d vs %d", ErrDivergence, k.Hex(), ba.Count, bb.Count)
		}
		for c := range ba.Mean {
			maxDiff = math.Max(maxDiff, math.Abs(ba.Mean[c]-bb.Mean[c]))
		}
	}

	if maxDiff > tol {
		return maxDiff, fmt.Errorf("%w: max channel difference %g exceeds %g", ErrDivergence, maxDiff, tol)
	}
	return maxDiff, nil
}

// SortedKeys returns the keys of colors in ascending order.
func SortedKeys(colors ColorMap) []pixel.Key {
	keys := make([]pixel.Key, 0, len(colors))
	for k := range colors {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
