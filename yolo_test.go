package lbltile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYOLOBox_String(t *testing.T) {
	b := YOLOBox{ClassID: 0, XCenter: 0.59765625, YCenter: 0.5, Width: 0.8046875, Height: 0.25}
	assert.Equal(t, "0 0.597656 0.500000 0.804688 0.250000", b.String())
}

func TestWriteReadYOLOLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile_0_0.txt")
	boxes := []YOLOBox{
		{ClassID: 0, XCenter: 0.5, YCenter: 0.25, Width: 0.125, Height: 0.0625},
		{ClassID: 2, XCenter: 0.75, YCenter: 0.5, Width: 0.5, Height: 1},
	}
	require.NoError(t, WriteYOLOLabels(path, boxes))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0 0.500000 0.250000 0.125000 0.062500\n2 0.750000 0.500000 0.500000 1.000000\n",
		string(content))

	got, err := ReadYOLOLabels(path)
	require.NoError(t, err)
	if diff := cmp.Diff(boxes, got, approx); diff != "" {
		t.Errorf("ReadYOLOLabels() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadYOLOLabels_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"short.txt": "0 0.5 0.5 0.1\n",
		"class.txt": "x 0.5 0.5 0.1 0.1\n",
		"value.txt": "0 0.5 y 0.1 0.1\n",
	} {
		path := writeTestFile(t, dir, name, content)
		_, err := ReadYOLOLabels(path)
		assert.Error(t, err, name)
	}

	// Blank lines are fine.
	path := writeTestFile(t, dir, "blank.txt", "\n0 0.5 0.5 0.1 0.1\n\n")
	boxes, err := ReadYOLOLabels(path)
	require.NoError(t, err)
	assert.Len(t, boxes, 1)
}
