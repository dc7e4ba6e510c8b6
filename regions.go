package julia

// Region is a rectangular window of the complex plane.
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// DefaultRegion returns the centered square window sampled by a Grid
// with the given bound.
func DefaultRegion(bound float64) Region {
	return Region{
		Xmin: -bound,
		Xmax: bound,
		Ymin: -bound,
		Ymax: bound,
	}
}

// Classic parameter values c for the quadratic Julia set z -> z^2 + c
var (
	// Douady rabbit – three-eared rabbit, period-3 attracting cycle
	DouadyRabbit = complex(-0.122561, 0.744862)

	// Dendrite – tree-like set with empty interior
	Dendrite = complex(0, 1)

	// San Marco – basilica-dome filaments along the real axis
	SanMarco = complex(-0.75, 0)

	// Basilica – period-2 attracting cycle, two main lobes
	Basilica = complex(-1, 0)

	// Siegel disk – irrationally neutral fixed point
	SiegelDisk = complex(-0.390541, -0.586788)

	// Airplane – real parameter with period-3 dynamics
	Airplane = complex(-1.754878, 0)

	// Galaxies – spiral dust near the boundary of the Mandelbrot set
	Galaxies = complex(-0.70176, -0.3842)
)
