package lbltile

// Remapping of global bounding boxes into the normalised frame of a tile.

import (
	"math"
)

// YOLOBox is a bounding box in normalised center form, relative to the enclosing tile.
type YOLOBox struct {
	ClassID int
	XCenter float64 // Range [0, 1].
	YCenter float64 // Range [0, 1].
	Width   float64 // Range [0, 1].
	Height  float64 // Range [0, 1].
}

// Denormalize converts b back to tile-local absolute x1, y1, x2, y2 coordinates.
func (b YOLOBox) Denormalize(t Tile) [4]float64 {
	w := float64(t.Width)
	h := float64(t.Height)
	return [4]float64{
		(b.XCenter - b.Width/2) * w,
		(b.YCenter - b.Height/2) * h,
		(b.XCenter + b.Width/2) * w,
		(b.YCenter + b.Height/2) * h,
	}
}

// RemapOptions controls RemapBox.
type RemapOptions struct {
	ClassID int // The class id assigned to every emitted box.

	// LegacyYClamp clamps the bottom edge of a box to the tile width instead of the tile height.
	// Only relevant for non-square tiles, where it may yield values above 1; kept to reproduce
	// label files made by older tooling.
	LegacyYClamp bool
}

// RemapBox expresses the absolute box coords (x1, y1, x2, y2 in source image pixels) in the
// normalised center form of tile t.
//
// The box is dropped (ok is false) when it does not intersect the tile, when it has zero extent
// along either axis, or when clipping to the tile keeps less than threshold of its original width
// or height. A threshold outside [0, 1] is clamped into that range, a NaN threshold drops every box.
func RemapBox(coords [4]float64, t Tile, threshold float64, opts RemapOptions) (box YOLOBox, ok bool) {
	width := float64(t.Width)
	height := float64(t.Height)
	if width <= 0 || height <= 0 || math.IsNaN(threshold) {
		return YOLOBox{}, false
	}
	threshold = math.Max(0, math.Min(1, threshold))

	// Translate into the tile frame.
	x1 := coords[0] - float64(t.X)
	y1 := coords[1] - float64(t.Y)
	x2 := coords[2] - float64(t.X)
	y2 := coords[3] - float64(t.Y)

	if x1 > width || x2 < 0 || y1 > height || y2 < 0 {
		return YOLOBox{}, false
	}

	origW := x2 - x1
	origH := y2 - y1
	if !(origW > 0) || !(origH > 0) {
		return YOLOBox{}, false
	}

	yBound := height
	if opts.LegacyYClamp {
		yBound = width
	}
	tx1 := math.Max(x1, 0)
	tx2 := math.Min(x2, width)
	ty1 := math.Max(y1, 0)
	ty2 := math.Min(y2, yBound)

	if (tx2-tx1)/origW < threshold || (ty2-ty1)/origH < threshold {
		return YOLOBox{}, false
	}

	return YOLOBox{
		ClassID: opts.ClassID,
		XCenter: (tx1 + tx2) / 2 / width,
		YCenter: (ty1 + ty2) / 2 / height,
		Width:   (tx2 - tx1) / width,
		Height:  (ty2 - ty1) / height,
	}, true
}

// RemapAnnotations remaps all annotations into tile t and returns the surviving boxes.
func RemapAnnotations(annotations []Annotation, t Tile, threshold float64, opts RemapOptions) []YOLOBox {
	var boxes []YOLOBox
	for _, a := range annotations {
		if b, ok := RemapBox(a.Coords, t, threshold, opts); ok {
			boxes = append(boxes, b)
		}
	}
	return boxes
}
