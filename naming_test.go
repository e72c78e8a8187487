package lbltile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileName(t *testing.T) {
	tests := []struct {
		imageID string
		x, y    int
		ext     string
		want    string
	}{
		{"scene.jpg", 448, 0, ".png", "scene_448_0.png"},
		{"/data/images/4f83-273e.jpg", 0, 896, ".jpg", "4f83-273e_0_896.jpg"},
		{"noext", 1, 2, ".jpg", "noext_1_2.jpg"},
		{"a_b.tif", 0, 0, ".tif", "a_b_0_0.tif"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TileName(tt.imageID, tt.x, tt.y, tt.ext))
		})
	}
}

func TestParseTileName_RoundTrip(t *testing.T) {
	name := TileName("airport_01.jpg", 448, 896, ".jpg")
	base, x, y, ext, err := ParseTileName(name)
	require.NoError(t, err)
	assert.Equal(t, "airport_01", base)
	assert.Equal(t, 448, x)
	assert.Equal(t, 896, y)
	assert.Equal(t, ".jpg", ext)
}

func TestParseTileName_Invalid(t *testing.T) {
	for _, name := range []string{"scene.jpg", "scene_1.jpg", "scene_a_1.jpg", "scene_1_b.jpg"} {
		t.Run(name, func(t *testing.T) {
			_, _, _, _, err := ParseTileName(name)
			assert.Error(t, err)
		})
	}
}

func TestLabelName(t *testing.T) {
	assert.Equal(t, "scene_0_448.txt", labelName("scene_0_448.jpg"))
}
