package lbltile

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the outcome of a Materialize run.
type Summary struct {
	Images           int // The number of source images.
	TrainImages      int
	ValImages        int
	Tiles            int // The number of tile images written.
	TilesWithObjects int // The number of tiles with at least one box.
	BoxesKept        int // The number of boxes written, counting a box once per tile.
	BoxesDropped     int // The number of box/tile pairs rejected by the remapper.

	// Statistics of the kept boxes in tile pixels.
	MeanBoxWidth, StdBoxWidth   float64
	MeanBoxHeight, StdBoxHeight float64
}

// String formats a one-line summary for logging.
func (s Summary) String() string {
	return fmt.Sprintf("%d images (%d train, %d val), %d tiles (%d with objects), %d boxes kept,"+
		" %d dropped, box size %.1fx%.1f (std %.1fx%.1f)",
		s.Images, s.TrainImages, s.ValImages, s.Tiles, s.TilesWithObjects, s.BoxesKept,
		s.BoxesDropped, s.MeanBoxWidth, s.MeanBoxHeight, s.StdBoxWidth, s.StdBoxHeight)
}

// summaryBuilder accumulates tile results into a Summary.
type summaryBuilder struct {
	summary         Summary
	widths, heights []float64
}

// addTile records a written tile with the surviving boxes out of numCandidates annotations.
func (b *summaryBuilder) addTile(t Tile, boxes []YOLOBox, numCandidates int) {
	b.summary.Tiles++
	if len(boxes) > 0 {
		b.summary.TilesWithObjects++
	}
	b.summary.BoxesKept += len(boxes)
	b.summary.BoxesDropped += numCandidates - len(boxes)
	for _, box := range boxes {
		b.widths = append(b.widths, box.Width*float64(t.Width))
		b.heights = append(b.heights, box.Height*float64(t.Height))
	}
}

// finish computes the box statistics and returns the summary.
func (b *summaryBuilder) finish() Summary {
	s := b.summary
	s.MeanBoxWidth, s.StdBoxWidth = meanStdDev(b.widths)
	s.MeanBoxHeight, s.StdBoxHeight = meanStdDev(b.heights)
	return s
}

// meanStdDev returns the sample mean and standard deviation of x, with zero for undefined values.
func meanStdDev(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
