package lbltile

// Brightness baseline for day/night frame classification.

import (
	"fmt"
	"image"
	"log"
	"path/filepath"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// The longer side of the copy that brightness is measured on.
const brightnessSampleSize = 256

// MeanValue returns the mean HSV value (brightness) of img in [0, 1]. Fully transparent pixels
// are ignored.
func MeanValue(img image.Image) float64 {
	img = downsample(img, brightnessSampleSize)
	b := img.Bounds()

	var sum float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			_, _, v := c.Hsv()
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// IsDay reports whether a frame with the given mean brightness counts as a day frame.
func IsDay(meanValue, threshold float64) bool {
	return meanValue >= threshold
}

// BrightnessSample is the measured brightness of a labelled frame.
type BrightnessSample struct {
	Path  string
	Value float64 // Mean HSV value.
	Day   bool    // The ground truth.
}

// Evaluation is the confusion matrix of the baseline at a threshold, with day as the positive
// class.
type Evaluation struct {
	Threshold      float64
	TruePositives  int // Day frames classified as day.
	FalsePositives int // Night frames classified as day.
	TrueNegatives  int // Night frames classified as night.
	FalseNegatives int // Day frames classified as night.
}

// Total is the number of evaluated frames.
func (e Evaluation) Total() int {
	return e.TruePositives + e.FalsePositives + e.TrueNegatives + e.FalseNegatives
}

// Accuracy is the fraction of correctly classified frames.
func (e Evaluation) Accuracy() float64 {
	if e.Total() == 0 {
		return 0
	}
	return float64(e.TruePositives+e.TrueNegatives) / float64(e.Total())
}

// String formats the evaluation for logging.
func (e Evaluation) String() string {
	return fmt.Sprintf("threshold %.3f: accuracy %.3f (tp %d, fp %d, tn %d, fn %d)",
		e.Threshold, e.Accuracy(), e.TruePositives, e.FalsePositives, e.TrueNegatives,
		e.FalseNegatives)
}

// isImageFile reports whether path has the extension of a decodable image format.
func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".tif", ".tiff", ".bmp", ".webp":
		return true
	}
	return false
}

// LoadBrightnessSamples measures all images in dayDir and nightDir.
func LoadBrightnessSamples(dayDir, nightDir string) ([]BrightnessSample, error) {
	var samples []BrightnessSample
	for _, d := range []struct {
		dir string
		day bool
	}{{dayDir, true}, {nightDir, false}} {
		files, err := filesByExtInDir(d.dir, "")
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			if !isImageFile(path) {
				continue
			}
			img, err := loadImage(path)
			if err != nil {
				return nil, err
			}
			samples = append(samples, BrightnessSample{Path: path, Value: MeanValue(img), Day: d.day})
		}
	}
	log.Printf("Measured brightness of %d frames", len(samples))

	return samples, nil
}

// Evaluate classifies the samples at threshold.
func Evaluate(samples []BrightnessSample, threshold float64) Evaluation {
	e := Evaluation{Threshold: threshold}
	for _, s := range samples {
		switch predicted := IsDay(s.Value, threshold); {
		case s.Day && predicted:
			e.TruePositives++
		case s.Day:
			e.FalseNegatives++
		case predicted:
			e.FalsePositives++
		default:
			e.TrueNegatives++
		}
	}
	return e
}

// BestThreshold returns the evaluation at the most accurate threshold. Candidates are midpoints
// between neighbouring sample values plus both ends; ties go to the lower threshold.
func BestThreshold(samples []BrightnessSample) Evaluation {
	if len(samples) == 0 {
		return Evaluation{}
	}

	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	sort.Float64s(values)

	candidates := []float64{values[0]}
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			candidates = append(candidates, (values[i-1]+values[i])/2)
		}
	}
	candidates = append(candidates, values[len(values)-1]+1e-9)

	best := Evaluate(samples, candidates[0])
	for _, t := range candidates[1:] {
		if e := Evaluate(samples, t); e.Accuracy() > best.Accuracy() {
			best = e
		}
	}
	return best
}
