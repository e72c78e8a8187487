package lbltile

// KITTI specific functionality.

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// KITTIAnnotation is a single annotation within a KITTI file.
type KITTIAnnotation struct {
	Coords [4]float64 // x1, y1, x2, y2
	Label  string
}

// FromKitti reads and parses KITTI annotations from labelDir and matches them to the images in
// imageDir by base file name.
func FromKitti(labelDir, imageDir string) ([]AnnotatedFile, error) {
	labelFiles, err := filesByExtInDir(labelDir, ".txt")
	if err != nil {
		return nil, err
	}
	log.Printf("Parsing KITTI labels for %d files", len(labelFiles))

	// Find the image files and create a map from base file name without ext to ext.
	imageFiles, err := filesByExtInDir(imageDir, "")
	if err != nil {
		return nil, err
	}
	imageNamesToExt := mapFileNamesToExtensions(imageFiles)

	data := make([]AnnotatedFile, 0, len(labelFiles))
	for _, path := range labelFiles {
		// Find the corresponding image.
		_, baseNoExt, _, err := splitPath(path)
		if err != nil {
			log.Print(err)
			continue
		}
		imageExt, found := imageNamesToExt[baseNoExt]
		if !found {
			log.Print("Could not find the corresponding image file, skipping ", path)
			continue
		}

		lines, err := readLines(path)
		if err != nil {
			return nil, err
		}
		annotations := make([]Annotation, 0, len(lines))
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			a, err := parseKittiAnnotation(line)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %q: %v", path, err)
			}
			annotations = append(annotations, Annotation{Coords: a.Coords, Label: a.Label})
		}

		data = append(data, AnnotatedFile{
			Annotations: annotations,
			FilePath:    filepath.Join(imageDir, baseNoExt+"."+imageExt),
		})
	}

	return data, nil
}

// parseKittiAnnotation parses the line of values for a single annotation.
func parseKittiAnnotation(line string) (KITTIAnnotation, error) {
	a := KITTIAnnotation{}

	tokens := strings.Fields(line)
	if len(tokens) < 8 {
		return a, fmt.Errorf("insufficient tokens in %q", line)
	}

	a.Label = tokens[0]
	var err error
	for i := 4; i < 8 && err == nil; i++ {
		a.Coords[i-4], err = strconv.ParseFloat(tokens[i], 64)
	}
	if err != nil {
		return a, fmt.Errorf("unexpected values in %q: %v", line, err)
	}

	return a, nil
}

// tileKittiAnnotations converts the normalised boxes of tile t to tile-local pixel annotations.
func tileKittiAnnotations(boxes []YOLOBox, t Tile, label string) []KITTIAnnotation {
	annotations := make([]KITTIAnnotation, len(boxes))
	for i, b := range boxes {
		annotations[i] = KITTIAnnotation{Coords: b.Denormalize(t), Label: label}
	}
	return annotations
}

// writeKittiFile writes the annotations for one image to the label file at path.
func writeKittiFile(path string, annotations []KITTIAnnotation) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeWithErrCheck(file, &err)

	for _, a := range annotations {
		_, err = fmt.Fprintf(file,
			"%s 0.0 0 0.0 %.2f %.2f %.2f %.2f 0.0 0.0 0.0 0.0 0.0 0.0 0.0\n",
			a.Label, a.Coords[0], a.Coords[1], a.Coords[2], a.Coords[3])
		if err != nil {
			return err
		}
	}

	return nil
}
