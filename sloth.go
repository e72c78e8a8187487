package lbltile

// Sloth specific functionality.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SlothAnnotation is a single annotation within a Sloth file.
type SlothAnnotation struct {
	Class  string  `json:"class,omitempty"`
	Type   string  `json:"type,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// SlothAnnotatedFile defines the Sloth annotation structure for a single file.
type SlothAnnotatedFile struct {
	Annotations []SlothAnnotation `json:"annotations"`
	Class       string            `json:"class,omitempty"`
	FilePath    string            `json:"filename,omitempty"`
}

// FromSloth reads and parses Sloth annotations from the file at path. Relative image file names
// are resolved against imageDir. Only "rect" annotations are used.
func FromSloth(path, imageDir string) ([]AnnotatedFile, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var slothData []SlothAnnotatedFile
	if err := json.Unmarshal(enc, &slothData); err != nil {
		return nil, fmt.Errorf("failed to parse Sloth input from %q: %v", path, err)
	}

	data := make([]AnnotatedFile, 0, len(slothData))
	for _, slothFileData := range slothData {
		filePath := slothFileData.FilePath
		if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(imageDir, filePath)
		}
		fileData := AnnotatedFile{
			Annotations: make([]Annotation, 0, len(slothFileData.Annotations)),
			FilePath:    filePath,
		}
		for _, a := range slothFileData.Annotations {
			if a.Type != "" && a.Type != "rect" {
				continue
			}
			fileData.Annotations = append(fileData.Annotations, Annotation{
				Coords: [4]float64{a.X, a.Y, a.X + a.Width, a.Y + a.Height},
				Label:  a.Class,
			})
		}
		data = append(data, fileData)
	}

	return data, nil
}
