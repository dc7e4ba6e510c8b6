// Package flow solves flow in a 2D box with the Jacobi algorithm.
//
// The stream function psi is discretised on an (m+2) x (n+2) grid with a
// one-cell halo holding the boundary conditions: fluid enters through an
// opening in the bottom edge and leaves through an opening in the right
// edge. Each Jacobi sweep replaces every interior cell with the average
// of its four neighbours, which converges to the discrete Laplace
// solution for the given boundaries.
package flow

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidArgument marks a contract violation in solver inputs.
var ErrInvalidArgument = errors.New("invalid argument")

// Base dimensions at scale 1. The grid and both openings grow linearly
// with the scale factor.
const (
	baseM      = 32 // interior rows
	baseN      = 32 // interior columns
	baseInlet  = 10 // offset of the inlet along the bottom edge
	baseOutlet = 15 // offset of the outlet along the right edge
	baseWidth  = 5  // opening width
)

// Box is the simulation state. psi and tmp are double-buffered: a sweep
// reads one and writes the other, then the roles swap. Boundary cells are
// identical in both and are never written after construction.
type Box struct {
	m, n  int
	scale int
	psi   *mat.Dense
	tmp   *mat.Dense
}

// New builds the box at the given scale factor with boundary conditions
// applied and the interior at zero.
func New(scale int) (*Box, error) {
	if scale < 1 {
		return nil, fmt.Errorf("scale factor must be >= 1, got %d: %w", scale, ErrInvalidArgument)
	}

	m := baseM * scale
	n := baseN * scale
	b := baseInlet * scale
	h := baseOutlet * scale
	w := baseWidth * scale

	psi := mat.NewDense(m+2, n+2, nil)

	// Inlet on the bottom edge: ramps from 0 up to w, then stays at w.
	for i := b + 1; i < b+w; i++ {
		psi.Set(i, 0, float64(i-b))
	}
	for i := b + w; i <= m; i++ {
		psi.Set(i, 0, float64(w))
	}

	// Outlet on the right edge: stays at w, then ramps back down.
	for j := 1; j <= h; j++ {
		psi.Set(m+1, j, float64(w))
	}
	for j := h + 1; j < h+w; j++ {
		psi.Set(m+1, j, float64(w-j+h))
	}

	tmp := mat.NewDense(m+2, n+2, nil)
	tmp.Copy(psi)

	return &Box{m: m, n: n, scale: scale, psi: psi, tmp: tmp}, nil
}

// Size returns the interior dimensions of the grid.
func (b *Box) Size() (m, n int) {
	return b.m, b.n
}

// Psi returns the current stream function grid, including the halo.
func (b *Box) Psi() *mat.Dense {
	return b.psi
}

// Jacobi runs niter sweeps. workers <= 0 means runtime.NumCPU();
// the result is identical for any worker count because a sweep reads only
// the previous grid and workers write disjoint row bands of the next one.
func (b *Box) Jacobi(niter, workers int) error {
	if niter < 0 {
		return fmt.Errorf("iterations must be >= 0, got %d: %w", niter, ErrInvalidArgument)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > b.m {
		workers = b.m
	}

	for iter := 0; iter < niter; iter++ {
		b.sweep(workers)
		b.psi, b.tmp = b.tmp, b.psi
	}
	return nil
}

func (b *Box) sweep(workers int) {
	sweepRows := func(lo, hi int) {
		for i := lo; i <= hi; i++ {
			for j := 1; j <= b.n; j++ {
				b.tmp.Set(i, j, 0.25*(b.psi.At(i-1, j)+b.psi.At(i+1, j)+b.psi.At(i, j-1)+b.psi.At(i, j+1)))
			}
		}
	}

	if workers == 1 {
		sweepRows(1, b.m)
		return
	}

	band := (b.m + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 1; lo <= b.m; lo += band {
		hi := lo + band - 1
		if hi > b.m {
			hi = b.m
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			sweepRows(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// Residual is the maximum absolute change a further sweep would make.
// Useful as a convergence measure between Jacobi runs.
func (b *Box) Residual() float64 {
	var max float64
	for i := 1; i <= b.m; i++ {
		for j := 1; j <= b.n; j++ {
			next := 0.25 * (b.psi.At(i-1, j) + b.psi.At(i+1, j) + b.psi.At(i, j-1) + b.psi.At(i, j+1))
			if d := math.Abs(next - b.psi.At(i, j)); d > max {
				max = d
			}
		}
	}
	return max
}

// Velocity derives the interior velocity components from the stream
// function by central differences: u = dpsi/dy, v = -dpsi/dx.
// Both matrices have the interior dimensions m x n.
func (b *Box) Velocity() (u, v *mat.Dense) {
	u = mat.NewDense(b.m, b.n, nil)
	v = mat.NewDense(b.m, b.n, nil)
	for i := 1; i <= b.m; i++ {
		for j := 1; j <= b.n; j++ {
			u.Set(i-1, j-1, (b.psi.At(i, j+1)-b.psi.At(i, j-1))/2)
			v.Set(i-1, j-1, -(b.psi.At(i+1, j)-b.psi.At(i-1, j))/2)
		}
	}
	return u, v
}
