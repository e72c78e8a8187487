package lbltile

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVIAProject = `{
  "_via_settings": {},
  "_via_img_metadata": {
    "b.jpg123": {
      "filename": "b.jpg",
      "size": 123,
      "regions": [
        {
          "shape_attributes": {"name": "polygon", "all_points_x": [10, 40, 30], "all_points_y": [5, 15, 50]},
          "region_attributes": {}
        },
        {
          "shape_attributes": {"name": "circle", "cx": 10, "cy": 10, "r": 5},
          "region_attributes": {"Label": "Aircraft"}
        }
      ]
    },
    "a.jpg456": {
      "filename": "a.jpg",
      "size": 456,
      "regions": [
        {
          "shape_attributes": {"name": "rect", "x": 1, "y": 2, "width": 30, "height": 40},
          "region_attributes": {"Label": "Helicopter"}
        }
      ]
    }
  }
}`

func TestFromVIA(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "project.json", testVIAProject)

	data, err := FromVIA(path, "/images", "Aircraft")
	require.NoError(t, err)
	require.Len(t, data, 2)

	// Sorted by project key.
	assert.Equal(t, filepath.Join("/images", "a.jpg"), data[0].FilePath)
	require.Len(t, data[0].Annotations, 1)
	assert.Equal(t, Annotation{Coords: [4]float64{1, 2, 31, 42}, Label: "Helicopter"},
		data[0].Annotations[0])

	assert.Equal(t, filepath.Join("/images", "b.jpg"), data[1].FilePath)
	require.Len(t, data[1].Annotations, 1, "circles are skipped")
	assert.Equal(t, Annotation{Coords: [4]float64{10, 5, 40, 50}, Label: "Aircraft"},
		data[1].Annotations[0])
}

func TestFromVIA_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := FromVIA(writeTestFile(t, dir, "bad.json", "{"), dir, "Aircraft")
	assert.Error(t, err)

	_, err = FromVIA(filepath.Join(dir, "missing.json"), dir, "Aircraft")
	assert.Error(t, err)
}

func TestViaShapeCoords_MismatchedPolygon(t *testing.T) {
	_, err := viaShapeCoords(VIAShape{Name: "polygon", AllPointsX: []float64{1, 2}, AllPointsY: []float64{1}})
	assert.True(t, errors.Is(err, ErrMalformedGeometry))
}
