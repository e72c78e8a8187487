package lbltile

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanValue(t *testing.T) {
	assert.InDelta(t, 1.0, MeanValue(createInMemoryImage(20, 10, color.White)), 1e-9)
	assert.InDelta(t, 0.0, MeanValue(createInMemoryImage(20, 10, color.Black)), 1e-9)
	assert.InDelta(t, 128.0/255, MeanValue(createInMemoryImage(20, 10, color.Gray{Y: 128})), 1e-3)

	// Large frames are measured on a downsampled copy.
	assert.InDelta(t, 1.0, MeanValue(createInMemoryImage(1000, 300, color.White)), 1e-6)

	// Transparent pixels do not count.
	assert.Zero(t, MeanValue(createInMemoryImage(4, 4, color.Transparent)))
}

func TestEvaluate(t *testing.T) {
	samples := []BrightnessSample{
		{Value: 0.9, Day: true},
		{Value: 0.4, Day: true},
		{Value: 0.1, Day: false},
		{Value: 0.6, Day: false},
	}
	e := Evaluate(samples, 0.5)
	assert.Equal(t, 1, e.TruePositives)
	assert.Equal(t, 1, e.FalseNegatives)
	assert.Equal(t, 1, e.TrueNegatives)
	assert.Equal(t, 1, e.FalsePositives)
	assert.Equal(t, 4, e.Total())
	assert.InDelta(t, 0.5, e.Accuracy(), 1e-9)

	assert.Zero(t, Evaluation{}.Accuracy())
}

func TestBestThreshold(t *testing.T) {
	samples := []BrightnessSample{
		{Value: 0.8, Day: true},
		{Value: 0.9, Day: true},
		{Value: 0.1, Day: false},
		{Value: 0.2, Day: false},
	}
	best := BestThreshold(samples)
	assert.InDelta(t, 0.5, best.Threshold, 1e-9)
	assert.Equal(t, 1.0, best.Accuracy())

	assert.Equal(t, Evaluation{}, BestThreshold(nil))
}

func TestLoadBrightnessSamples(t *testing.T) {
	dayDir := t.TempDir()
	nightDir := t.TempDir()
	writeTestImage(t, dayDir, "noon.png", createInMemoryImage(16, 16, color.White))
	writeTestImage(t, nightDir, "midnight.png", createInMemoryImage(16, 16, color.Black))
	writeTestFile(t, nightDir, "notes.txt", "not an image")

	samples, err := LoadBrightnessSamples(dayDir, nightDir)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.True(t, samples[0].Day)
	assert.False(t, samples[1].Day)

	assert.Equal(t, 1.0, BestThreshold(samples).Accuracy())
}
