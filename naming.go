package lbltile

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// TileName returns the file name for the tile of image imageID at origin (x, y).
//
// The file extension of imageID is replaced by ext (including the dot), and the origin offsets are
// appended to the base name: "scene.jpg", 448, 0, ".png" gives "scene_448_0.png".
func TileName(imageID string, x, y int, ext string) string {
	base := filepath.Base(imageID)
	base = base[:len(base)-len(filepath.Ext(base))]
	return fmt.Sprintf("%s_%d_%d%s", base, x, y, ext)
}

// ParseTileName is the inverse of TileName. The returned base has no extension.
func ParseTileName(name string) (base string, x, y int, ext string, err error) {
	ext = filepath.Ext(name)
	stem := name[:len(name)-len(ext)]

	yIdx := strings.LastIndex(stem, "_")
	if yIdx < 0 {
		return "", 0, 0, "", fmt.Errorf("missing tile offsets in %q", name)
	}
	xIdx := strings.LastIndex(stem[:yIdx], "_")
	if xIdx < 0 {
		return "", 0, 0, "", fmt.Errorf("missing tile offsets in %q", name)
	}

	if x, err = strconv.Atoi(stem[xIdx+1 : yIdx]); err != nil {
		return "", 0, 0, "", fmt.Errorf("invalid x offset in %q: %v", name, err)
	}
	if y, err = strconv.Atoi(stem[yIdx+1:]); err != nil {
		return "", 0, 0, "", fmt.Errorf("invalid y offset in %q: %v", name, err)
	}

	return stem[:xIdx], x, y, ext, nil
}

// labelName returns the label file name for the tile image file name.
func labelName(tileImageName string) string {
	return strings.TrimSuffix(tileImageName, filepath.Ext(tileImageName)) + ".txt"
}
