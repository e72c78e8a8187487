package lbltile

// Sliding-window tile enumeration.

import (
	"fmt"
	"image"
)

// Tile is a rectangular window inside a source image.
type Tile struct {
	X, Y          int // The origin (top-left corner) in source image pixels.
	Width, Height int
}

// Rect returns the source image rectangle covered by the tile.
func (t Tile) Rect() image.Rectangle {
	return image.Rect(t.X, t.Y, t.X+t.Width, t.Y+t.Height)
}

// TileGrid describes square tiles of side Size laid out on a regular stride grid over an image of
// Width x Height pixels. Neighbouring tiles overlap by Overlap pixels.
type TileGrid struct {
	Width, Height int // The source image dimensions.
	Size          int // The tile side length.
	Overlap       int // The overlap between neighbouring tiles.
}

// Stride is the distance between consecutive tile origins.
func (g TileGrid) Stride() int {
	return g.Size - g.Overlap
}

// Validate checks that the grid parameters describe a finite enumeration.
func (g TileGrid) Validate() error {
	if g.Size <= 0 {
		return fmt.Errorf("invalid tile size %d", g.Size)
	}
	if g.Overlap < 0 {
		return fmt.Errorf("invalid tile overlap %d", g.Overlap)
	}
	if g.Stride() <= 0 {
		return fmt.Errorf("tile overlap %d must be smaller than the tile size %d", g.Overlap, g.Size)
	}
	return nil
}

// axisOrigins returns the tile origins along one axis of the given extent.
//
// Origins are 0, T, 2T, ... while origin < extent-size. A band at the far edge that is narrower
// than one stride is not covered, and an axis of exactly the tile size yields no origin at all.
func axisOrigins(extent, size, stride int) []int {
	if size > extent || stride <= 0 {
		return nil
	}
	origins := make([]int, 0, (extent-size)/stride+1)
	for o := 0; o < extent-size; o += stride {
		origins = append(origins, o)
	}
	return origins
}

// Each calls fn for every tile, row by row, until fn returns false. Every call restarts the
// enumeration from the top-left tile. An invalid grid enumerates nothing.
func (g TileGrid) Each(fn func(Tile) bool) {
	if g.Validate() != nil {
		return
	}
	xs := axisOrigins(g.Width, g.Size, g.Stride())
	ys := axisOrigins(g.Height, g.Size, g.Stride())
	for _, y := range ys {
		for _, x := range xs {
			if !fn(Tile{X: x, Y: y, Width: g.Size, Height: g.Size}) {
				return
			}
		}
	}
}

// Len returns the number of tiles Each visits.
func (g TileGrid) Len() int {
	if g.Validate() != nil {
		return 0
	}
	return len(axisOrigins(g.Width, g.Size, g.Stride())) * len(axisOrigins(g.Height, g.Size, g.Stride()))
}

// Tiles returns all tiles of the grid in enumeration order.
func (g TileGrid) Tiles() []Tile {
	tiles := make([]Tile, 0, g.Len())
	g.Each(func(t Tile) bool {
		tiles = append(tiles, t)
		return true
	})
	return tiles
}
