package render

import (
	"image"
	"image/draw"
	"runtime"
	"sync"

	julia "github.com/sb15895/juliafield"
)

// ParallelImage renders the view by splitting it into 64x64 tiles and
// spreading them across worker goroutines on r. Tiles carry global
// coordinates, so each finished tile is composed into the result with a
// single draw; the mutex only guards that composition and the first
// error seen.
func ParallelImage(r julia.Renderer, p julia.Params, view julia.Region, w, h, workers int) (*image.RGBA, error) {
	tiles, err := SplitTiles(image.Rect(0, 0, w, h), 64, 64)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	tileCh := make(chan image.Rectangle)

	var (
		wg       sync.WaitGroup
		m        sync.Mutex
		firstErr error
	)
	for wi := 0; wi < workers; wi++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tile := range tileCh {
				tileImg, err := r.RenderTile(p, view, tile, w, h)
				m.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					m.Unlock()
					continue
				}
				draw.Draw(img, tileImg.Bounds(), &tileImg, tileImg.Bounds().Min, draw.Src)
				m.Unlock()
			}
		}()
	}

	for _, tile := range tiles {
		tileCh <- tile
	}
	close(tileCh)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return img, nil
}
