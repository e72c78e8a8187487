package lbltile

// Dataset materialisation: tiling of source images and their labels into train/val splits.

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Dataset split names.
const (
	TrainSplit = "train"
	ValSplit   = "val"
)

var (
	// ErrDimensionMismatch is returned when source images do not share the same dimensions.
	ErrDimensionMismatch = errors.New("image dimension mismatch")

	// ErrTileNameCollision is returned when two source images would produce the same tile names,
	// e.g. "a.png" and "a.tif".
	ErrTileNameCollision = errors.New("tile name collision")
)

// TileRecord describes a written tile image and its labels.
type TileRecord struct {
	ImagePath string    // The tile image file.
	Split     string    // TrainSplit or ValSplit.
	Tile      Tile      // The tile window in the source image.
	Boxes     []YOLOBox // The boxes written to the tile label file.
}

// materializer holds the state of a single Materialize run.
type materializer struct {
	cfg     Config
	records []TileRecord
	stats   summaryBuilder
}

// Materialize tiles all images in index and writes the tile images, one label file per tile and
// the dataset manifest to cfg.OutDir.
//
// The layout is <OutDir>/images/{train,val} and <OutDir>/labels/{train,val}. All source images
// are validated before the first tile is written. Tiles and labels from an earlier run into the
// same OutDir are removed first. Any I/O or decode error aborts the run.
func Materialize(index AnnotationIndex, cfg Config) (Summary, error) {
	if err := cfg.Validate(); err != nil {
		return Summary{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if len(index) == 0 {
		return Summary{}, fmt.Errorf("no annotated images")
	}

	ids := index.IDs()
	if err := validateImages(index, ids, cfg.AllowMixedSizes); err != nil {
		return Summary{}, err
	}

	train, val, err := Partition(ids, cfg.ValRatio, cfg.Seed)
	if err != nil {
		return Summary{}, err
	}
	log.Printf("Tiling %d images (%d train, %d val) with %d annotations",
		len(ids), len(train), len(val), index.NumAnnotations())

	if err := removeOutputs(cfg.OutDir); err != nil {
		return Summary{}, err
	}
	dirs := []string{
		imageDir(cfg.OutDir, TrainSplit), imageDir(cfg.OutDir, ValSplit),
		labelDir(cfg.OutDir, TrainSplit), labelDir(cfg.OutDir, ValSplit),
	}
	if cfg.KITTILabels {
		dirs = append(dirs, kittiDir(cfg.OutDir, TrainSplit), kittiDir(cfg.OutDir, ValSplit))
	}
	if err := createDirs(dirs...); err != nil {
		return Summary{}, err
	}

	m := &materializer{cfg: cfg}
	m.stats.summary.Images = len(ids)
	m.stats.summary.TrainImages = len(train)
	m.stats.summary.ValImages = len(val)

	for _, split := range []struct {
		name string
		ids  []string
	}{{TrainSplit, train}, {ValSplit, val}} {
		for _, id := range split.ids {
			if err := m.tileImage(index[id], split.name); err != nil {
				return Summary{}, err
			}
		}
	}

	manifest := NewManifest(cfg.OutDir, cfg.classNames())
	if err := WriteManifest(filepath.Join(cfg.OutDir, ManifestFileName), manifest); err != nil {
		return Summary{}, err
	}

	if cfg.TFRecordPath != "" {
		if err := m.writeTFRecords(); err != nil {
			return Summary{}, err
		}
	}

	summary := m.stats.finish()
	log.Print("Tiling done: ", summary)
	return summary, nil
}

// validateImages checks that all images exist and can be decoded, and that no two images share a
// tile name stem. Unless mixed sizes are allowed, all images must have the same dimensions.
func validateImages(index AnnotationIndex, ids []string, allowMixedSizes bool) error {
	stems := make(map[string]string, len(ids))
	for _, id := range ids {
		stem := strings.TrimSuffix(id, filepath.Ext(id))
		if other, ok := stems[stem]; ok {
			return fmt.Errorf("%w: %q and %q both map to %q", ErrTileNameCollision, other, id,
				TileName(id, 0, 0, ""))
		}
		stems[stem] = id
	}

	var first image.Config
	var firstID string
	for i, id := range ids {
		path := index[id].FilePath
		cfg, _, err := decodeImageConfig(path)
		if err != nil {
			return fmt.Errorf("failed to decode the image metadata of %q: %w", path, err)
		}
		if i == 0 {
			first, firstID = cfg, id
			continue
		}
		if !allowMixedSizes && (cfg.Width != first.Width || cfg.Height != first.Height) {
			return fmt.Errorf("%w: %q is %dx%d, %q is %dx%d", ErrDimensionMismatch,
				id, cfg.Width, cfg.Height, firstID, first.Width, first.Height)
		}
	}
	return nil
}

// tileImage writes all tiles of the image described by data to the split directories.
func (m *materializer) tileImage(data AnnotatedFile, split string) error {
	img, err := loadImage(data.FilePath)
	if err != nil {
		return err
	}
	ext, err := outputImageExt(data.FilePath, m.cfg.ImageFormat)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	grid := TileGrid{
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Size:    m.cfg.TileSize,
		Overlap: m.cfg.Overlap,
	}
	if grid.Len() == 0 {
		log.Printf("Image %q (%dx%d) is too small for %d pixel tiles, skipping",
			data.FilePath, grid.Width, grid.Height, grid.Size)
		return nil
	}

	grid.Each(func(t Tile) bool {
		err = m.writeTile(img, data, t, split, ext)
		return err == nil
	})

	return err
}

// writeTile crops tile t from img and writes the tile image and its labels.
func (m *materializer) writeTile(img image.Image, data AnnotatedFile, t Tile, split, ext string) error {
	name := TileName(data.ImageID(), t.X, t.Y, ext)
	imagePath := filepath.Join(imageDir(m.cfg.OutDir, split), name)

	r := t.Rect().Add(img.Bounds().Min)
	if err := saveImage(imagePath, imaging.Crop(img, r), m.cfg.JPEGQuality); err != nil {
		return err
	}

	boxes := RemapAnnotations(data.Annotations, t, m.cfg.Threshold, m.cfg.remapOptions())
	m.stats.addTile(t, boxes, len(data.Annotations))

	// Tiles without boxes have no label files unless empty ones are requested.
	if len(boxes) > 0 || m.cfg.EmptyLabelFiles {
		if err := m.writeTileLabels(name, t, split, boxes); err != nil {
			return err
		}
	}

	if m.cfg.TFRecordPath != "" {
		m.records = append(m.records, TileRecord{ImagePath: imagePath, Split: split, Tile: t, Boxes: boxes})
	}

	return nil
}

// writeTileLabels writes the YOLO and, if enabled, KITTI label files of the tile image name.
func (m *materializer) writeTileLabels(name string, t Tile, split string, boxes []YOLOBox) error {
	labelPath := filepath.Join(labelDir(m.cfg.OutDir, split), labelName(name))
	if err := WriteYOLOLabels(labelPath, boxes); err != nil {
		return fmt.Errorf("failed to write labels %q: %w", labelPath, err)
	}

	if m.cfg.KITTILabels {
		kittiPath := filepath.Join(kittiDir(m.cfg.OutDir, split), labelName(name))
		if err := writeKittiFile(kittiPath, tileKittiAnnotations(boxes, t, m.cfg.ClassName)); err != nil {
			return fmt.Errorf("failed to write KITTI labels %q: %w", kittiPath, err)
		}
	}

	return nil
}

// writeTFRecords writes one TFRecord file set per split from the collected tile records.
func (m *materializer) writeTFRecords() error {
	bySplit := map[string][]TileRecord{}
	for _, r := range m.records {
		bySplit[r.Split] = append(bySplit[r.Split], r)
	}

	labels := m.cfg.classNames()
	for _, split := range []string{TrainSplit, ValSplit} {
		if len(bySplit[split]) == 0 {
			continue
		}
		path := fmt.Sprintf("%s-%s.record", m.cfg.TFRecordPath, split)
		if err := WriteTFRecord(path, bySplit[split], labels, m.cfg.TFRecordShards); err != nil {
			return err
		}
		log.Printf("Wrote %d %s tiles to %s", len(bySplit[split]), split, path)
	}

	return WriteLabelMap(m.cfg.LabelMapPath, labels)
}

// removeOutputs deletes the tile image and label directories of an earlier run under root.
func removeOutputs(root string) error {
	for _, dir := range []string{"images", "labels", "labels_kitti"} {
		path := filepath.Join(root, dir)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %q: %v", path, err)
		}
	}
	return nil
}

func imageDir(root, split string) string {
	return filepath.Join(root, "images", split)
}

func labelDir(root, split string) string {
	return filepath.Join(root, "labels", split)
}

func kittiDir(root, split string) string {
	return filepath.Join(root, "labels_kitti", split)
}
