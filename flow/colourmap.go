package flow

import (
	"image"
	"math"

	"github.com/sb15895/juliafield/render"
)

// Colourmap renders the interior velocity magnitude as a heat map,
// normalised to the current maximum speed. Image row 0 is the top of the
// box (the last interior grid row).
func (b *Box) Colourmap() *image.RGBA {
	u, v := b.Velocity()

	speed := make([]float64, b.m*b.n)
	var max float64
	for i := 0; i < b.m; i++ {
		for j := 0; j < b.n; j++ {
			s := math.Hypot(u.At(i, j), v.At(i, j))
			speed[i*b.n+j] = s
			if s > max {
				max = s
			}
		}
	}
	if max == 0 {
		max = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, b.n, b.m))
	for i := 0; i < b.m; i++ {
		for j := 0; j < b.n; j++ {
			img.SetRGBA(j, b.m-1-i, render.Heat(speed[i*b.n+j]/max))
		}
	}
	return img
}
