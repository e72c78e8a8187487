package lbltile

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readTFRecordExamples decodes all records in the TFRecord file at path. The CRCs are not checked.
func readTFRecordExamples(t *testing.T, path string) []*tensorflow.Example {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var examples []*tensorflow.Example
	for len(data) > 0 {
		require.GreaterOrEqual(t, len(data), 12)
		n := int(binary.LittleEndian.Uint64(data[:8]))
		data = data[12:]
		require.GreaterOrEqual(t, len(data), n+4)

		e := &tensorflow.Example{}
		require.NoError(t, proto.Unmarshal(data[:n], e))
		examples = append(examples, e)
		data = data[n+4:]
	}
	return examples
}

func TestWriteTFRecord(t *testing.T) {
	dir := t.TempDir()
	imagePath := writeTestImage(t, dir, "scene_0_0.png", createGradientImage(64, 32))

	records := []TileRecord{
		{
			ImagePath: imagePath,
			Split:     TrainSplit,
			Tile:      Tile{Width: 64, Height: 32},
			Boxes: []YOLOBox{
				{ClassID: 0, XCenter: 0.5, YCenter: 0.5, Width: 0.5, Height: 0.25},
				{ClassID: 0, XCenter: 0.25, YCenter: 0.75, Width: 0.125, Height: 0.5},
			},
		},
		{ImagePath: imagePath, Split: TrainSplit, Tile: Tile{Width: 64, Height: 32}},
	}

	recordPath := filepath.Join(dir, "tiles.record")
	require.NoError(t, WriteTFRecord(recordPath, records, []string{"Aircraft"}, 1))

	examples := readTFRecordExamples(t, recordPath)
	require.Len(t, examples, 2)

	features := examples[0].Features.Feature
	assert.Equal(t, []int64{64}, features["image/width"].GetInt64List().Value)
	assert.Equal(t, []int64{32}, features["image/height"].GetInt64List().Value)
	assert.Equal(t, [][]byte{[]byte("png")}, features["image/format"].GetBytesList().Value)
	assert.Equal(t, []float32{0.25, 0.1875}, features["image/object/bbox/xmin"].GetFloatList().Value)
	assert.Equal(t, []float32{0.375, 0.5}, features["image/object/bbox/ymin"].GetFloatList().Value)
	assert.Equal(t, []int64{1, 1}, features["image/object/class/label"].GetInt64List().Value)

	labels := examples[1].Features.Feature["image/object/class/label"].GetInt64List()
	require.NotNil(t, labels)
	assert.Empty(t, labels.Value)
}

func TestWriteTFRecord_Shards(t *testing.T) {
	dir := t.TempDir()
	imagePath := writeTestImage(t, dir, "scene_0_0.png", createGradientImage(16, 16))

	records := make([]TileRecord, 3)
	for i := range records {
		records[i] = TileRecord{ImagePath: imagePath, Tile: Tile{Width: 16, Height: 16}}
	}

	recordPath := filepath.Join(dir, "tiles.record")
	require.NoError(t, WriteTFRecord(recordPath, records, []string{"Aircraft"}, 2))

	first := readTFRecordExamples(t, recordPath+"-00000-of-00002")
	second := readTFRecordExamples(t, recordPath+"-00001-of-00002")
	assert.Len(t, first, 2)
	assert.Len(t, second, 1)
}

func TestWriteTFRecord_UnknownClass(t *testing.T) {
	dir := t.TempDir()
	imagePath := writeTestImage(t, dir, "scene_0_0.png", createGradientImage(16, 16))

	records := []TileRecord{{ImagePath: imagePath, Boxes: []YOLOBox{{ClassID: 3}}}}
	err := WriteTFRecord(filepath.Join(dir, "tiles.record"), records, []string{"Aircraft"}, 1)
	assert.Error(t, err)
}

func TestWriteLabelMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label_map.pbtxt")
	require.NoError(t, WriteLabelMap(path, []string{"class0", "Aircraft"}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.True(t, strings.Contains(text, "item {\n  name: \"class0\"\n  id: 1\n}\n"), text)
	assert.True(t, strings.Contains(text, "item {\n  name: \"Aircraft\"\n  id: 2\n}\n"), text)
}
