package lbltile

// YOLO text label functionality.

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// String formats b as a label line: "class x_center y_center width height".
func (b YOLOBox) String() string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f", b.ClassID, b.XCenter, b.YCenter, b.Width, b.Height)
}

// parseYOLOLine parses a single label line as written by YOLOBox.String.
func parseYOLOLine(line string) (YOLOBox, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 5 {
		return YOLOBox{}, fmt.Errorf("expected 5 values in %q", line)
	}

	var b YOLOBox
	var err error
	if b.ClassID, err = strconv.Atoi(tokens[0]); err != nil {
		return YOLOBox{}, fmt.Errorf("unexpected class id in %q: %v", line, err)
	}
	values := []*float64{&b.XCenter, &b.YCenter, &b.Width, &b.Height}
	for i, v := range values {
		if *v, err = strconv.ParseFloat(tokens[i+1], 64); err != nil {
			return YOLOBox{}, fmt.Errorf("unexpected values in %q: %v", line, err)
		}
	}

	return b, nil
}

// ReadYOLOLabels reads the boxes from the label file at path. Blank lines are ignored.
func ReadYOLOLabels(path string) ([]YOLOBox, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	boxes := make([]YOLOBox, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b, err := parseYOLOLine(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q: %v", path, err)
		}
		boxes = append(boxes, b)
	}

	return boxes, nil
}

// WriteYOLOLabels writes one line per box to the file at path, replacing an existing file.
func WriteYOLOLabels(path string, boxes []YOLOBox) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeWithErrCheck(file, &err)

	for _, b := range boxes {
		if _, err = fmt.Fprintln(file, b.String()); err != nil {
			return err
		}
	}

	return nil
}
