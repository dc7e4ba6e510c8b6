package render

import (
	"fmt"
	"image"
	"testing"

	julia "github.com/sb15895/juliafield"
)

func TestSplitTilesCoverExactly(t *testing.T) {
	tests := []struct {
		w, h, tileW, tileH int
	}{
		{128, 128, 64, 64},
		{100, 80, 64, 64},
		{1, 1, 64, 64},
		{65, 33, 32, 32},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d-tiles%dx%d", tt.w, tt.h, tt.tileW, tt.tileH), func(t *testing.T) {
			bounds := image.Rect(0, 0, tt.w, tt.h)
			tiles, err := SplitTiles(bounds, tt.tileW, tt.tileH)
			if err != nil {
				t.Fatalf("SplitTiles: %v", err)
			}

			covered := make(map[image.Point]int)
			for _, tile := range tiles {
				if !tile.In(bounds) {
					t.Fatalf("tile %v outside bounds %v", tile, bounds)
				}
				for y := tile.Min.Y; y < tile.Max.Y; y++ {
					for x := tile.Min.X; x < tile.Max.X; x++ {
						covered[image.Pt(x, y)]++
					}
				}
			}
			if len(covered) != tt.w*tt.h {
				t.Fatalf("covered %d pixels, want %d", len(covered), tt.w*tt.h)
			}
			for pt, n := range covered {
				if n != 1 {
					t.Fatalf("pixel %v covered %d times", pt, n)
				}
			}
		})
	}
}

func TestSplitTilesRejectsBadSizes(t *testing.T) {
	if _, err := SplitTiles(image.Rect(0, 0, 10, 10), 0, 5); err == nil {
		t.Error("tileW=0: expected error")
	}
	if _, err := SplitTiles(image.Rect(0, 0, 10, 10), 5, -1); err == nil {
		t.Error("tileH=-1: expected error")
	}
}

func TestRenderTileBoundsAndAlpha(t *testing.T) {
	p := julia.DefaultParams(julia.DouadyRabbit)
	p.MaxIterations = 60
	tile := image.Rect(16, 32, 48, 64)

	img, err := CPU{}.RenderTile(p, julia.DefaultRegion(1.5), tile, 128, 128)
	if err != nil {
		t.Fatalf("RenderTile: %v", err)
	}
	if img.Bounds() != tile {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), tile)
	}
	for y := tile.Min.Y; y < tile.Max.Y; y++ {
		for x := tile.Min.X; x < tile.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 255 {
				t.Fatalf("pixel (%d,%d) alpha = %d, want 255", x, y, a)
			}
		}
	}
}

// For c = 0 the filled Julia set is the unit disk: the image center must
// be inside (black) and the corners outside (colored).
func TestRenderImageUnitDisk(t *testing.T) {
	p := julia.Params{C: 0, EscapeRadius: 4, MaxIterations: 100}
	img, err := Image(p, julia.DefaultRegion(1.5), 101, 101)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}

	center := img.RGBAAt(50, 50)
	if center.R != 0 || center.G != 0 || center.B != 0 {
		t.Errorf("center pixel = %v, want black (inside the set)", center)
	}
	corner := img.RGBAAt(0, 0)
	if corner.R == 0 && corner.G == 0 && corner.B == 0 {
		t.Errorf("corner pixel = %v, want colored (outside the set)", corner)
	}
}

func TestFieldImage(t *testing.T) {
	g := julia.Grid{Resolution: 16, Bound: 1.5}
	p := julia.Params{C: 0, EscapeRadius: 4, MaxIterations: 80}
	f, err := julia.EvaluateField(g, p)
	if err != nil {
		t.Fatalf("EvaluateField: %v", err)
	}

	img := FieldImage(f, p.MaxIterations)
	if got, want := img.Bounds(), image.Rect(0, 0, 17, 17); got != want {
		t.Fatalf("bounds = %v, want %v", got, want)
	}
	// Center cell (8,8) is z0 = 0, which reaches the cap: black pixel.
	center := img.RGBAAt(8, 8)
	if center.R != 0 || center.G != 0 || center.B != 0 {
		t.Errorf("center pixel = %v, want black", center)
	}
}
