package julia

import (
	"math"
	"math/cmplx"
)

// EscapeCount iterates z <- z*z + c from z0 and returns the number of
// iterations completed before |z|^2 exceeded radius2, capped at
// maxIterations. The iteration that causes the escape is counted; a
// sample already outside the radius returns 0. A point exactly on the
// radius has not escaped, so the loop continues on equality.
func EscapeCount(z0, c complex128, radius2 float64, maxIterations int) int {
	zr, zi := real(z0), imag(z0)
	cr, ci := real(c), imag(c)
	n := 0
	for ; zr*zr+zi*zi <= radius2 && n < maxIterations; n++ {
		zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
	}
	return n
}

// SmoothEscape is the fractional escape count used for rendering:
// integer count plus a log-log correction that removes banding.
// Samples that never escape return float64(maxIterations).
func SmoothEscape(z0, c complex128, radius2 float64, maxIterations int) float64 {
	z := z0
	for i := 0; i < maxIterations; i++ {
		z = z*z + c
		if real(z)*real(z)+imag(z)*imag(z) > radius2 {
			return float64(i) + 1 - math.Log(math.Log(cmplx.Abs(z)))/math.Log(2)
		}
	}
	return float64(maxIterations)
}
