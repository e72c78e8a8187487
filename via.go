package lbltile

// VGG Image Annotator (VIA) specific functionality.

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// VIAShape describes the shape of a region. Rectangles use X, Y, Width and Height, polygons and
// polylines use AllPointsX and AllPointsY.
type VIAShape struct {
	Name       string    `json:"name"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	AllPointsX []float64 `json:"all_points_x"`
	AllPointsY []float64 `json:"all_points_y"`
}

// VIARegionAnnotation is a single region annotation for a particular image in a VIA file.
type VIARegionAnnotation struct {
	Attributes map[string]string `json:"region_attributes"`
	Shape      VIAShape          `json:"shape_attributes"`
}

// VIAAnnotatedFile defines the VIA annotation structure for a single file.
type VIAAnnotatedFile struct {
	Annotations []VIARegionAnnotation `json:"regions"`
	FilePath    string                `json:"filename"`
	Size        int64                 `json:"size"`
}

// VIAProject defines the subset of the VIA project structure read here.
type VIAProject struct {
	ImageMetadata map[string]VIAAnnotatedFile `json:"_via_img_metadata"`
}

const viaLabelAttribute = "Label" // The attribute key used for labels.

// FromVIA reads and parses a VIA project from the file at path. Image file names are resolved
// relative to imageDir.
//
// Rectangles are used as they are; polygons and polylines are reduced to their bounding box.
// Regions of other shapes are skipped. Regions without a label attribute get defaultLabel.
func FromVIA(path, imageDir, defaultLabel string) ([]AnnotatedFile, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var viaData VIAProject
	if err := json.Unmarshal(enc, &viaData); err != nil {
		return nil, fmt.Errorf("failed to parse VIA input from %q: %v", path, err)
	}

	// Iterate in a stable order.
	keys := make([]string, 0, len(viaData.ImageMetadata))
	for k := range viaData.ImageMetadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := make([]AnnotatedFile, 0, len(keys))
	for _, k := range keys {
		viaFile := viaData.ImageMetadata[k]
		fileData := AnnotatedFile{
			Annotations: make([]Annotation, 0, len(viaFile.Annotations)),
			FilePath:    filepath.Join(imageDir, viaFile.FilePath),
		}
		for _, a := range viaFile.Annotations {
			coords, err := viaShapeCoords(a.Shape)
			if err != nil {
				log.Printf("Skipping region in %q: %v", viaFile.FilePath, err)
				continue
			}
			label, ok := a.Attributes[viaLabelAttribute]
			if !ok || label == "" {
				label = defaultLabel
			}
			fileData.Annotations = append(fileData.Annotations, Annotation{Coords: coords, Label: label})
		}
		data = append(data, fileData)
	}

	return data, nil
}

// viaShapeCoords returns the bounding box x1, y1, x2, y2 of the region shape.
func viaShapeCoords(s VIAShape) ([4]float64, error) {
	switch s.Name {
	case "rect":
		return [4]float64{s.X, s.Y, s.X + s.Width, s.Y + s.Height}, nil
	case "polygon", "polyline":
		if len(s.AllPointsX) == 0 || len(s.AllPointsX) != len(s.AllPointsY) {
			return [4]float64{}, fmt.Errorf("%w: %d x and %d y values", ErrMalformedGeometry,
				len(s.AllPointsX), len(s.AllPointsY))
		}
		points := make([][2]float64, len(s.AllPointsX))
		for i := range points {
			points[i] = [2]float64{s.AllPointsX[i], s.AllPointsY[i]}
		}
		return boundingBox(points), nil
	}
	return [4]float64{}, fmt.Errorf("unsupported shape %q", s.Name)
}
