package lbltile

// Tabular (CSV) annotation input with closed polygon geometries.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Column names in the annotation table.
const (
	csvImageIDColumn  = "image_id"
	csvGeometryColumn = "geometry"
	csvClassColumn    = "class"
)

// ErrMalformedGeometry is returned for polygon geometries that are not closed 5-point rings.
var ErrMalformedGeometry = errors.New("malformed geometry")

// A number such as "135", "135.", "135.5", ".5" or "1e3".
const numberExpr = `[-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`

// A coordinate pair written as "(x, y)" or "[x, y]".
const pointExpr = `[(\[]\s*(` + numberExpr + `)\s*,\s*(` + numberExpr + `)\s*[)\]]`

var (
	pointPattern = regexp.MustCompile(pointExpr)

	// A list of points, optionally enclosed in brackets, with nothing else around or between them.
	pointListPattern = regexp.MustCompile(
		`^\s*[\[(]?\s*` + pointExpr + `(?:\s*,\s*` + pointExpr + `)*\s*[\])]?\s*$`)
)

// ParseGeometry parses a closed polygon of exactly 5 points, the first equal to the last, and
// reduces it to the axis-aligned bounding box x1, y1, x2, y2 of its 4 unique vertices.
func ParseGeometry(s string) ([4]float64, error) {
	if !pointListPattern.MatchString(s) {
		return [4]float64{}, fmt.Errorf("%w: not a list of points: %q", ErrMalformedGeometry, s)
	}
	matches := pointPattern.FindAllStringSubmatch(s, -1)
	if len(matches) != 5 {
		return [4]float64{}, fmt.Errorf("%w: expected 5 points, got %d in %q",
			ErrMalformedGeometry, len(matches), s)
	}

	points := make([][2]float64, len(matches))
	for i, m := range matches {
		for j := 0; j < 2; j++ {
			v, err := strconv.ParseFloat(m[j+1], 64)
			if err != nil {
				return [4]float64{}, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
			}
			points[i][j] = v
		}
	}
	if points[0] != points[4] {
		return [4]float64{}, fmt.Errorf("%w: polygon is not closed in %q", ErrMalformedGeometry, s)
	}

	return boundingBox(points[:4]), nil
}

// boundingBox returns the min/max extent x1, y1, x2, y2 of the points.
func boundingBox(points [][2]float64) [4]float64 {
	box := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		box[0] = math.Min(box[0], p[0])
		box[1] = math.Min(box[1], p[1])
		box[2] = math.Max(box[2], p[0])
		box[3] = math.Max(box[3], p[1])
	}
	return box
}

// FromCSV reads the annotation table at path. Each row describes one object instance of class
// className; the image_id column names the image file in imageDir.
//
// Any malformed row aborts parsing. The order of the returned files follows the first appearance
// of each image in the table.
func FromCSV(path, imageDir, className string) ([]AnnotatedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %q: %v", path, err)
	}
	defer f.Close()

	data, err := parseCSVAnnotations(f, imageDir, className)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	log.Printf("Parsed %d annotated images from %q", len(data), path)

	return data, nil
}

// parseCSVAnnotations parses the annotation table from r.
func parseCSVAnnotations(r io.Reader, imageDir, className string) ([]AnnotatedFile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read the header: %v", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{csvImageIDColumn, csvGeometryColumn, csvClassColumn} {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var data []AnnotatedFile
	fileIdx := make(map[string]int)
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		field := func(name string) string {
			if i := columns[name]; i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		imageID := field(csvImageIDColumn)
		if imageID == "" {
			return nil, fmt.Errorf("row %d: empty %s", row, csvImageIDColumn)
		}
		if class := field(csvClassColumn); className != "" && class != className {
			return nil, fmt.Errorf("row %d: unexpected class %q, expected %q", row, class, className)
		}
		coords, err := ParseGeometry(field(csvGeometryColumn))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		i, ok := fileIdx[imageID]
		if !ok {
			i = len(data)
			fileIdx[imageID] = i
			data = append(data, AnnotatedFile{FilePath: filepath.Join(imageDir, imageID)})
		}
		data[i].Annotations = append(data[i].Annotations,
			Annotation{Coords: coords, Label: field(csvClassColumn)})
	}

	return data, nil
}
