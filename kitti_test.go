package lbltile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKittiAnnotation(t *testing.T) {
	a, err := parseKittiAnnotation("Aircraft 0.0 0 0.0 10.00 20.00 30.50 40.00 0.0 0.0 0.0 0.0 0.0 0.0 0.0")
	require.NoError(t, err)
	assert.Equal(t, "Aircraft", a.Label)
	assert.Equal(t, [4]float64{10, 20, 30.5, 40}, a.Coords)

	_, err = parseKittiAnnotation("Aircraft 0.0 0 0.0 10.00")
	assert.Error(t, err)
	_, err = parseKittiAnnotation("Aircraft 0.0 0 0.0 a b c d")
	assert.Error(t, err)
}

func TestFromKitti(t *testing.T) {
	labelDir := t.TempDir()
	imageDir := t.TempDir()

	writeTestImage(t, imageDir, "scene.png", createGradientImage(8, 8))
	writeTestFile(t, labelDir, "scene.txt",
		"Aircraft 0.0 0 0.0 1.00 2.00 3.00 4.00 0.0 0.0 0.0 0.0 0.0 0.0 0.0\n\n")
	writeTestFile(t, labelDir, "orphan.txt",
		"Aircraft 0.0 0 0.0 1.00 2.00 3.00 4.00 0.0 0.0 0.0 0.0 0.0 0.0 0.0\n")

	data, err := FromKitti(labelDir, imageDir)
	require.NoError(t, err)
	require.Len(t, data, 1, "labels without an image are skipped")
	assert.Equal(t, filepath.Join(imageDir, "scene.png"), data[0].FilePath)
	require.Len(t, data[0].Annotations, 1)
	assert.Equal(t, [4]float64{1, 2, 3, 4}, data[0].Annotations[0].Coords)
}

func TestWriteKittiFile_TileLocal(t *testing.T) {
	tile := Tile{X: 448, Y: 0, Width: 512, Height: 512}
	boxes := []YOLOBox{{XCenter: 0.5, YCenter: 0.25, Width: 0.25, Height: 0.125}}

	path := filepath.Join(t.TempDir(), "scene_448_0.txt")
	require.NoError(t, writeKittiFile(path, tileKittiAnnotations(boxes, tile, "Aircraft")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Aircraft 0.0 0 0.0 192.00 96.00 320.00 160.00 0.0 0.0 0.0 0.0 0.0 0.0 0.0\n",
		string(content))

	a, err := parseKittiAnnotation(string(content[:len(content)-1]))
	require.NoError(t, err)
	assert.Equal(t, [4]float64{192, 96, 320, 160}, a.Coords)
}
