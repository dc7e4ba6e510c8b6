package julia

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrInvalidArgument marks a contract violation in evaluator inputs.
// All validation errors wrap it, so callers can test with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// Defaults for field evaluation. EscapeRadius is compared against |z|,
// so the squared threshold used internally is its square.
const (
	DefaultBound         = 1.5
	DefaultEscapeRadius  = 4.0
	DefaultMaxIterations = 1000
)

// Grid describes a square sampling region centered on the origin:
// Resolution+1 samples per axis over [-Bound, Bound].
type Grid struct {
	Resolution int
	Bound      float64
}

// Step is the sample spacing along each axis.
func (g Grid) Step() float64 {
	return 2 * g.Bound / float64(g.Resolution)
}

// Validate reports whether the grid satisfies the input contract.
func (g Grid) Validate() error {
	if g.Resolution < 1 {
		return fmt.Errorf("resolution must be >= 1, got %d: %w", g.Resolution, ErrInvalidArgument)
	}
	if g.Bound <= 0 {
		return fmt.Errorf("bound must be > 0, got %g: %w", g.Bound, ErrInvalidArgument)
	}
	return nil
}

// Params fixes one quadratic Julia set and its escape test.
type Params struct {
	C             complex128
	EscapeRadius  float64
	MaxIterations int
}

// DefaultParams returns Params for c with default escape radius and cap.
func DefaultParams(c complex128) Params {
	return Params{
		C:             c,
		EscapeRadius:  DefaultEscapeRadius,
		MaxIterations: DefaultMaxIterations,
	}
}

// Validate reports whether the parameters satisfy the input contract.
func (p Params) Validate() error {
	if p.EscapeRadius <= 0 {
		return fmt.Errorf("escape radius must be > 0, got %g: %w", p.EscapeRadius, ErrInvalidArgument)
	}
	if p.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be >= 1, got %d: %w", p.MaxIterations, ErrInvalidArgument)
	}
	return nil
}

// Field holds escape counts for a (Resolution+1) x (Resolution+1) grid,
// row-major by the outer index i (the real axis). Each cell is written
// exactly once during evaluation and is in [0, MaxIterations].
type Field struct {
	Resolution int
	counts     []int
}

// NewField allocates a zeroed field for a validated resolution. Callers
// that schedule their own row evaluation fill it with EvaluateRows.
func NewField(resolution int) *Field {
	side := resolution + 1
	return &Field{
		Resolution: resolution,
		counts:     make([]int, side*side),
	}
}

// Side is the number of samples per axis.
func (f *Field) Side() int {
	return f.Resolution + 1
}

// At returns the escape count at indices (i, j).
func (f *Field) At(i, j int) int {
	return f.counts[i*(f.Resolution+1)+j]
}

// Counts exposes the backing row-major slice. The field owns no other
// state, so callers may read it freely after evaluation returns.
func (f *Field) Counts() []int {
	return f.counts
}

// EvaluateField computes the escape count for every sample of g under p,
// using all available CPUs.
func EvaluateField(g Grid, p Params) (*Field, error) {
	return EvaluateFieldWorkers(g, p, 0)
}

// EvaluateFieldWorkers is EvaluateField with an explicit worker count.
// workers <= 0 means runtime.NumCPU(); workers == 1 runs sequentially.
// The result is identical for any worker count: each cell depends only on
// its own sample point, and workers write disjoint row bands.
func EvaluateFieldWorkers(g Grid, p Params, workers int) (*Field, error) {
	// Fail fast, before any work is dispatched.
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	side := g.Resolution + 1
	if workers > side {
		workers = side
	}

	f := NewField(g.Resolution)

	if workers == 1 {
		EvaluateRows(f, g, p, 0, side)
		return f, nil
	}

	// Contiguous row bands per worker; no shared writes, so no locking.
	band := (side + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < side; start += band {
		end := start + band
		if end > side {
			end = side
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			EvaluateRows(f, g, p, start, end)
		}(start, end)
	}
	wg.Wait()

	return f, nil
}

// EvaluateRows fills rows [start, end) of f in place. Rows are
// independent, so concurrent calls on disjoint ranges need no locking.
// Inputs are assumed validated; f must have been allocated for
// g.Resolution.
func EvaluateRows(f *Field, g Grid, p Params, start, end int) {
	side := g.Resolution + 1
	step := g.Step()
	radius2 := p.EscapeRadius * p.EscapeRadius
	for i := start; i < end; i++ {
		row := f.counts[i*side : (i+1)*side]
		re := -g.Bound + float64(i)*step
		for j := 0; j < side; j++ {
			im := -g.Bound + float64(j)*step
			row[j] = EscapeCount(complex(re, im), p.C, radius2, p.MaxIterations)
		}
	}
}

// EscapeFraction returns the proportion of cells that reached the
// iteration cap, i.e. samples that never escaped within maxIterations.
// The count is an exact integer comparison, so the result does not depend
// on evaluation or summation order.
func EscapeFraction(f *Field, maxIterations int) (float64, error) {
	if maxIterations < 1 {
		return 0, fmt.Errorf("max iterations must be >= 1, got %d: %w", maxIterations, ErrInvalidArgument)
	}
	if f == nil || len(f.counts) == 0 {
		return 0, fmt.Errorf("empty field: %w", ErrInvalidArgument)
	}
	capped := 0
	for _, n := range f.counts {
		if n == maxIterations {
			capped++
		}
	}
	return float64(capped) / float64(len(f.counts)), nil
}
