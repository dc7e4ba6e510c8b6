package render

import (
	"image"
	"image/color"
	"math"

	julia "github.com/sb15895/juliafield"
)

// CPU renders Julia set tiles on the local CPU.
type CPU struct{}

var _ julia.Renderer = CPU{}

// RenderTile implements julia.Renderer. The tile rectangle is in global
// image coordinates; imgW and imgH give the full image size used for the
// pixel-to-plane mapping, so tiles from different calls line up.
func (CPU) RenderTile(p julia.Params, view julia.Region, tile image.Rectangle, imgW, imgH int) (image.RGBA, error) {
	img := image.NewRGBA(tile)
	radius2 := p.EscapeRadius * p.EscapeRadius

	for py := tile.Min.Y; py < tile.Max.Y; py++ {
		yf := view.Ymin + (float64(py)/float64(imgH))*(view.Ymax-view.Ymin)

		for px := tile.Min.X; px < tile.Max.X; px++ {
			xf := view.Xmin + (float64(px)/float64(imgW))*(view.Xmax-view.Xmin)

			mu := julia.SmoothEscape(complex(xf, yf), p.C, radius2, p.MaxIterations)

			var col color.RGBA
			if mu >= float64(p.MaxIterations) {
				col = color.RGBA{A: 255}
			} else {
				hue := math.Mod(mu*0.02, 1.0)
				col = hsv(hue, 1, 1)
			}

			img.SetRGBA(px, py, col)
		}
	}

	return *img, nil
}

// Image renders the whole view in one call.
func Image(p julia.Params, view julia.Region, w, h int) (*image.RGBA, error) {
	img, err := CPU{}.RenderTile(p, view, image.Rect(0, 0, w, h), w, h)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// FieldImage turns a count field into a log-scaled heat map. Cells that
// reached the cap are black; everything else is colored by its count.
func FieldImage(f *julia.Field, maxIterations int) *image.RGBA {
	side := f.Side()
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	logMax := math.Log1p(float64(maxIterations))

	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			n := f.At(i, j)
			var col color.RGBA
			if n == maxIterations {
				col = color.RGBA{A: 255}
			} else {
				col = Heat(math.Log1p(float64(n)) / logMax)
			}
			// i runs along the real axis (image x), j along the imaginary.
			img.SetRGBA(i, side-1-j, col)
		}
	}
	return img
}

// Heat maps t in [0,1] onto a blue-to-red heat color. Values outside the
// range are clamped.
func Heat(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return hsv(0.66-0.66*t, 1, 1)
}

// Simple HSV -> RGB
func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	if h < 0 {
		h += 1
	}
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}
