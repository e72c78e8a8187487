package lbltile

// TFRecord object detection specific functionality.

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
)

// TFFeatureMap maps feature names to their values. Values must be convertible to
// tensorflow.Feature.
type TFFeatureMap map[string]interface{}

// toTFFeatures converts a tile record to the feature map of a TensorFlow object detection example.
//
// Label map ids are 1-based, so the id of a box is its class id plus one. labels is indexed by
// class id.
func toTFFeatures(r TileRecord, labels []string) (TFFeatureMap, error) {
	// Get the image width and height.
	img, format, err := decodeImageConfig(r.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode the image metadata: %v", err)
	}

	// Read the image data.
	imgData, err := os.ReadFile(r.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read the image: %v", err)
	}

	// Prepare the feature map for the per file data.
	f := make(TFFeatureMap, 16)
	f["image/height"] = img.Height
	f["image/width"] = img.Width
	f["image/filename"] = r.ImagePath
	f["image/source_id"] = r.ImagePath
	f["image/encoded"] = imgData
	f["image/format"] = format

	// Prepare the per label data, as normalised corners.
	numLabels := len(r.Boxes)
	xmins := make([]float32, numLabels)
	ymins := make([]float32, numLabels)
	xmaxs := make([]float32, numLabels)
	ymaxs := make([]float32, numLabels)
	classes := make([]string, numLabels)
	classIDs := make([]int64, numLabels)
	for i, b := range r.Boxes {
		if b.ClassID < 0 || b.ClassID >= len(labels) {
			return nil, fmt.Errorf("no label for class id %d", b.ClassID)
		}
		xmins[i] = float32(b.XCenter - b.Width/2)
		ymins[i] = float32(b.YCenter - b.Height/2)
		xmaxs[i] = float32(b.XCenter + b.Width/2)
		ymaxs[i] = float32(b.YCenter + b.Height/2)
		classes[i] = labels[b.ClassID]
		classIDs[i] = int64(b.ClassID + 1)
	}
	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/text"] = classes
	f["image/object/class/label"] = classIDs

	return f, nil
}

// WriteTFRecord does a streaming conversion, serialisation and file write for the tile records to
// one or more TFRecord files stored under recordFilePath (with suffixes added when numShards>1).
func WriteTFRecord(recordFilePath string, records []TileRecord, labels []string,
	numShards int) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", e)
		}
	}()

	if len(records) == 0 {
		return nil
	}
	if numShards <= 0 {
		numShards = 1
	}

	var shardFile *os.File
	defer func() {
		if shardFile != nil {
			closeWithErrCheck(shardFile, &err)
		}
	}()

	shardSize := int(math.Ceil(float64(len(records)) / float64(numShards)))
	shardIdx := -1

	// Convert and serialise one record at a time.
	for i, r := range records {
		// Check if a new shard file needs to be opened for writing.
		if i%shardSize == 0 {
			shardIdx++

			if shardFile != nil {
				if err := shardFile.Close(); err != nil {
					return err
				}
				shardFile = nil
			}

			shardPath := recordFilePath
			if numShards > 1 {
				shardPath += fmt.Sprintf("-%05d-of-%05d", shardIdx, numShards)
			}
			f, err := os.Create(shardPath)
			if err != nil {
				return fmt.Errorf("failed to create shard at %q: %v", shardPath, err)
			}
			shardFile = f
		}

		features, err := toTFFeatures(r, labels)
		if err != nil {
			return fmt.Errorf("failed to convert %q: %v", r.ImagePath, err)
		}
		if err := writeTFRecordExample(shardFile, example.New(features)); err != nil {
			return fmt.Errorf("failed to write example for %q: %v", r.ImagePath, err)
		}
	}

	return nil
}

// writeTFRecordExample serialises the example and writes it as a TFRecord to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}

// WriteLabelMap writes the label map for labels, indexed by class id, in prototxt format.
func WriteLabelMap(path string, labels []string) error {
	var b strings.Builder
	for i, name := range labels {
		fmt.Fprintf(&b, "item {\n  name: %q\n  id: %d\n}\n", name, i+1)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write the label map %q: %v", path, err)
	}
	return nil
}
