package lbltile

// Dataset manifest for YOLO style training tools.

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the name of the manifest file in the dataset root.
const ManifestFileName = "data.yaml"

// Manifest names the dataset split directories and the classes.
type Manifest struct {
	Path  string   `yaml:"path"`  // The dataset root.
	Train string   `yaml:"train"` // The train image dir, relative to Path.
	Val   string   `yaml:"val"`   // The val image dir, relative to Path.
	NC    int      `yaml:"nc"`    // The number of classes.
	Names []string `yaml:"names"` // The class names, indexed by class id.
}

// NewManifest returns the manifest for a dataset materialised to root.
func NewManifest(root string, names []string) Manifest {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return Manifest{
		Path:  root,
		Train: filepath.ToSlash(filepath.Join("images", TrainSplit)),
		Val:   filepath.ToSlash(filepath.Join("images", ValSplit)),
		NC:    len(names),
		Names: names,
	}
}

// WriteManifest writes m as YAML to path.
func WriteManifest(path string, m Manifest) error {
	enc, err := yaml.Marshal(&m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, enc, 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %v", path, err)
	}
	return nil
}

// ReadManifest reads the manifest at path.
func ReadManifest(path string) (Manifest, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	if err := yaml.Unmarshal(enc, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest %q: %v", path, err)
	}
	if m.NC != len(m.Names) {
		return Manifest{}, fmt.Errorf("manifest %q declares %d classes but names %d",
			path, m.NC, len(m.Names))
	}

	return m, nil
}
