package render

import (
	"fmt"
	"image"
)

// SplitTiles splits r into tiles of size tileW x tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
// The tiles are disjoint and cover r exactly.
func SplitTiles(r image.Rectangle, tileW, tileH int) ([]image.Rectangle, error) {
	if tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("tile dimensions must be positive, got %dx%d", tileW, tileH)
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := tileH
		if oy+th > h {
			th = h - oy
		}

		for ox := 0; ox < w; ox += tileW {
			tw := tileW
			if ox+tw > w {
				tw = w - ox
			}

			tiles = append(tiles, image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			))
		}
	}

	return tiles, nil
}
