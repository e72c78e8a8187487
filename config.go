package lbltile

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Config holds the tiling configuration.
type Config struct {
	OutDir string `json:"out_dir"` // The dataset root directory.

	TileSize  int     `json:"tile_size"`  // The tile side length in pixels.
	Overlap   int     `json:"overlap"`    // The overlap between neighbouring tiles in pixels.
	Threshold float64 `json:"threshold"`  // The min. fraction of a box extent kept per axis.
	ValRatio  float64 `json:"val_ratio"`  // The fraction of source images in the val split.
	Seed      int64   `json:"seed"`       // The seed for the train/val partition.
	ClassID   int     `json:"class_id"`   // The class id written to the label files.
	ClassName string  `json:"class_name"` // The expected (and only) class in the annotations.

	ImageFormat string `json:"image_format"` // The tile encoding; empty keeps the source encoding.
	JPEGQuality int    `json:"jpeg_quality"` // The quality for JPEG tiles [1, 100].

	EmptyLabelFiles bool `json:"empty_label_files"` // Write empty label files for tiles without boxes.
	LegacyYClamp    bool `json:"legacy_y_clamp"`    // See RemapOptions.LegacyYClamp.
	AllowMixedSizes bool `json:"allow_mixed_sizes"` // Allow source images of different dimensions.

	KITTILabels    bool   `json:"kitti_labels"`    // Also write tile-local KITTI labels.
	TFRecordPath   string `json:"tfrecord_path"`   // Also write TFRecord files with this path prefix.
	TFRecordShards int    `json:"tfrecord_shards"` // The number of TFRecord shard files per split.
	LabelMapPath   string `json:"label_map_path"`  // The TFRecord label map file.
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		OutDir:         "dataset",
		TileSize:       512,
		Overlap:        64,
		Threshold:      0.3,
		ValRatio:       0.2,
		Seed:           42,
		ClassID:        0,
		ClassName:      "Aircraft",
		JPEGQuality:    90,
		TFRecordShards: 1,
	}
}

// LoadConfig loads the configuration from a JSON file. Values missing from the file keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.OutDir == "" {
		return fmt.Errorf("missing output directory")
	}
	if err := (TileGrid{Size: c.TileSize, Overlap: c.Overlap}).Validate(); err != nil {
		return err
	}
	if c.Threshold < 0 || c.Threshold > 1 || math.IsNaN(c.Threshold) {
		return fmt.Errorf("invalid threshold %v, must be in [0, 1]", c.Threshold)
	}
	if c.ValRatio < 0 || c.ValRatio > 1 || math.IsNaN(c.ValRatio) {
		return fmt.Errorf("invalid validation ratio %v, must be in [0, 1]", c.ValRatio)
	}
	if c.ClassID < 0 {
		return fmt.Errorf("invalid class id %d", c.ClassID)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("invalid JPEG quality %d, must be in [1, 100]", c.JPEGQuality)
	}
	if c.TFRecordPath != "" && c.LabelMapPath == "" {
		return fmt.Errorf("missing TFRecord label map path")
	}
	return nil
}

func (c Config) remapOptions() RemapOptions {
	return RemapOptions{ClassID: c.ClassID, LegacyYClamp: c.LegacyYClamp}
}

// classNames returns the class name list indexed by class id. Ids below ClassID, which never
// appear in the labels, get placeholder names.
func (c Config) classNames() []string {
	names := make([]string, c.ClassID+1)
	for i := range names {
		names[i] = fmt.Sprintf("class%d", i)
	}
	names[c.ClassID] = c.ClassName
	return names
}
