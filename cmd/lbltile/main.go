// Tiles large annotated images into fixed-size overlapping tiles with YOLO labels, split into
// train and val datasets.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sensorable/lbltile"
)

var (
	convertFrom format // The annotation source format.

	imageDirPath       string // The input directory with the labeled images.
	labelFileOrDirPath string // The input label directory or file, depending on the format.

	cfg lbltile.Config // The tiling configuration.
)

type format int

// The known annotation formats.
const (
	Unknown format = iota // If an unknown format is specified.
	CSV                   // Table with closed polygon geometries.
	Kitti
	Sloth
	VIA // VGG Image Annotator
)

func formatFrom(s string) format {
	switch s {
	case "csv":
		return CSV
	case "kitti":
		return Kitti
	case "sloth":
		return Sloth
	case "via":
		return VIA
	}
	return Unknown
}

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  csv input options:\t-labels <file> -images <dir>")
		_, _ = fmt.Fprintln(os.Stderr, "  kitti input options:\t-labels <dir> -images <dir>")
		_, _ = fmt.Fprintln(os.Stderr, "  sloth input options:\t-labels <file> -images <dir>")
		_, _ = fmt.Fprintln(os.Stderr, "  via input options:\t-labels <file> -images <dir>")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		log.Print(msg...)
		flag.Usage()
		os.Exit(1)
	}

	defaults := lbltile.DefaultConfig()

	from := flag.String("from", "csv", "The annotation source `format` {csv, kitti, sloth, via}")
	configPath := flag.String("config", "",
		"The JSON configuration file `path`; flags given on the command line override its values")

	// Path arguments.
	flag.StringVar(&imageDirPath, "images", imageDirPath,
		"The `path` to the image input directory")
	flag.StringVar(&labelFileOrDirPath, "labels", labelFileOrDirPath,
		"The `path` to the label input file (csv, sloth, via) or directory (kitti)")
	outDir := flag.String("out", defaults.OutDir, "The dataset output directory `path`")

	// Tiling arguments.
	tileSize := flag.Int("tile-size", defaults.TileSize, "The tile side `length` in pixels")
	overlap := flag.Int("overlap", defaults.Overlap,
		"The overlap in `pixels` between neighbouring tiles")
	threshold := flag.Float64("threshold", defaults.Threshold,
		"The min. `fraction` of a box width and height that must remain inside a tile [0.0, 1.0]")
	valRatio := flag.Float64("val-ratio", defaults.ValRatio,
		"The `fraction` of source images assigned to the val split [0.0, 1.0]")
	seed := flag.Int64("seed", defaults.Seed, "The `seed` for the train/val split")
	classID := flag.Int("class-id", defaults.ClassID, "The class `id` written to the labels")
	className := flag.String("class-name", defaults.ClassName,
		"The expected class `name` in the annotations and the manifest")
	legacyYClamp := flag.Bool("legacy-y-clamp", defaults.LegacyYClamp,
		"Clamp the bottom edge of boxes to the tile width instead of its height")
	emptyLabels := flag.Bool("empty-labels", defaults.EmptyLabelFiles,
		"Write empty label files for tiles without objects instead of omitting them")
	mixedSizes := flag.Bool("allow-mixed-sizes", defaults.AllowMixedSizes,
		"Allow source images with different dimensions")

	// Output arguments.
	imageEnc := flag.String("image-enc", defaults.ImageFormat,
		"The `encoding` for tile images {jpg, png, tif, bmp}; empty keeps the source encoding")
	jpegQuality := flag.Int("jpeg-quality", defaults.JPEGQuality,
		"The quality to use when encoding JPEGs [1, 100]")
	kitti := flag.Bool("kitti", defaults.KITTILabels,
		"Also write tile-local KITTI labels to <out>/labels_kitti")
	tfRecordPath := flag.String("tfrecord", defaults.TFRecordPath,
		"Also write TFRecord files with this `path` prefix")
	labelMapPath := flag.String("tfrecord-label-map-file", defaults.LabelMapPath,
		"The TFRecord label map file `path`")
	numShards := flag.Int("num-shards", defaults.TFRecordShards,
		"The number of TFRecord shard files to create per split")

	// Parse and validate flags.
	flag.Parse()

	convertFrom = formatFrom(*from)
	if convertFrom == Unknown {
		printUsageAndExit("Unsupported input format")
	}
	if labelFileOrDirPath == "" || imageDirPath == "" {
		printUsageAndExit("Missing label or image input path argument")
	}

	cfg = defaults
	if *configPath != "" {
		var err error
		if cfg, err = lbltile.LoadConfig(*configPath); err != nil {
			printUsageAndExit(err)
		}
	}

	// Apply the flags that were set explicitly.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.OutDir = *outDir
		case "tile-size":
			cfg.TileSize = *tileSize
		case "overlap":
			cfg.Overlap = *overlap
		case "threshold":
			cfg.Threshold = *threshold
		case "val-ratio":
			cfg.ValRatio = *valRatio
		case "seed":
			cfg.Seed = *seed
		case "class-id":
			cfg.ClassID = *classID
		case "class-name":
			cfg.ClassName = *className
		case "legacy-y-clamp":
			cfg.LegacyYClamp = *legacyYClamp
		case "empty-labels":
			cfg.EmptyLabelFiles = *emptyLabels
		case "allow-mixed-sizes":
			cfg.AllowMixedSizes = *mixedSizes
		case "image-enc":
			cfg.ImageFormat = *imageEnc
		case "jpeg-quality":
			cfg.JPEGQuality = *jpegQuality
		case "kitti":
			cfg.KITTILabels = *kitti
		case "tfrecord":
			cfg.TFRecordPath = *tfRecordPath
		case "tfrecord-label-map-file":
			cfg.LabelMapPath = *labelMapPath
		case "num-shards":
			cfg.TFRecordShards = *numShards
		}
	})

	if err := cfg.Validate(); err != nil {
		printUsageAndExit("Invalid configuration: ", err)
	}

	// Clean path arguments.
	imageDirPath = filepath.Clean(imageDirPath)
	labelFileOrDirPath = filepath.Clean(labelFileOrDirPath)
	cfg.OutDir = filepath.Clean(cfg.OutDir)
	if imageDirPath == cfg.OutDir {
		printUsageAndExit("The image input and output paths cannot be identical")
	}
}

func main() {
	// Parse input.
	var data []lbltile.AnnotatedFile
	var err error
	switch convertFrom {
	case CSV:
		data, err = lbltile.FromCSV(labelFileOrDirPath, imageDirPath, cfg.ClassName)
	case Kitti:
		data, err = lbltile.FromKitti(labelFileOrDirPath, imageDirPath)
	case Sloth:
		data, err = lbltile.FromSloth(labelFileOrDirPath, imageDirPath)
	case VIA:
		data, err = lbltile.FromVIA(labelFileOrDirPath, imageDirPath, cfg.ClassName)
	default:
		err = fmt.Errorf("unsupported input format")
	}
	if err != nil {
		log.Fatal("Failed to parse the input: ", err)
	}

	// Only the configured class is tiled, other labels (e.g. KITTI DontCare) are dropped.
	data = lbltile.Filter(data, []string{cfg.ClassName})
	index := lbltile.NewAnnotationIndex(data)

	summary, err := lbltile.Materialize(index, cfg)
	if err != nil {
		log.Fatal("Tiling failed: ", err)
	}

	log.Printf("Successfully wrote %d tiles to %s", summary.Tiles, cfg.OutDir)
}
