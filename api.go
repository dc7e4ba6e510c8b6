package julia

import (
	"image"
)

// Renderer renders one tile of a Julia set view. The returned image uses
// global image coordinates (tile.Min .. tile.Max), so tiles rendered by
// different workers can be composed into the full image without remapping.
type Renderer interface {
	RenderTile(p Params, view Region, tile image.Rectangle, imgW, imgH int) (image.RGBA, error)
}
