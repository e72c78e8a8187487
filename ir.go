package lbltile

// The intermediate annotation metadata representation.

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"path/filepath"
	"sort"
)

// Annotation is the intermediate representation of an object label.
type Annotation struct {
	Coords [4]float64 // Absolute x1, y1, x2, y2 offsets from the top-left corner.
	Label  string
}

// Width is the object width from a.Coords.
func (a Annotation) Width() float64 {
	return a.Coords[2] - a.Coords[0]
}

// Height is the object height from a.Coords.
func (a Annotation) Height() float64 {
	return a.Coords[3] - a.Coords[1]
}

// AnnotatedFile is the intermediate representation of file metadata.
type AnnotatedFile struct {
	Annotations []Annotation // The annotations.
	FilePath    string       // The annotated file.
}

// ImageID is the identifier of the annotated image, its base file name.
func (f AnnotatedFile) ImageID() string {
	return filepath.Base(f.FilePath)
}

// Filter returns a copy of data with only the annotations whose label is in labelNames. Files
// left without annotations are kept, their tiles become background tiles. An empty labelNames
// keeps everything.
func Filter(data []AnnotatedFile, labelNames []string) []AnnotatedFile {
	keep := make(map[string]bool, len(labelNames))
	for _, name := range labelNames {
		keep[name] = true
	}

	numLabelsBeforeFilter := 0
	numLabelsAfterFilter := 0
	filtered := make([]AnnotatedFile, len(data))
	for i, f := range data {
		numLabelsBeforeFilter += len(f.Annotations)
		filtered[i] = AnnotatedFile{FilePath: f.FilePath}
		for _, a := range f.Annotations {
			if len(keep) > 0 && !keep[a.Label] {
				continue
			}
			filtered[i].Annotations = append(filtered[i].Annotations, a)
		}
		numLabelsAfterFilter += len(filtered[i].Annotations)
	}

	log.Printf("Filtered out %d of %d labels", numLabelsBeforeFilter-numLabelsAfterFilter,
		numLabelsBeforeFilter)
	return filtered
}

// AnnotationIndex maps image identifiers to the annotations of that image. It is built once from
// the parsed input and is not modified afterwards.
type AnnotationIndex map[string]AnnotatedFile

// NewAnnotationIndex builds the index from data. Annotations of entries that refer to the same
// image are merged.
func NewAnnotationIndex(data []AnnotatedFile) AnnotationIndex {
	index := make(AnnotationIndex, len(data))
	for _, f := range data {
		id := f.ImageID()
		if existing, ok := index[id]; ok {
			existing.Annotations = append(existing.Annotations, f.Annotations...)
			index[id] = existing
			continue
		}
		index[id] = AnnotatedFile{
			Annotations: append([]Annotation(nil), f.Annotations...),
			FilePath:    f.FilePath,
		}
	}
	return index
}

// IDs returns the sorted image identifiers in the index.
func (index AnnotationIndex) IDs() []string {
	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NumAnnotations is the total number of annotations in the index.
func (index AnnotationIndex) NumAnnotations() int {
	n := 0
	for _, f := range index {
		n += len(f.Annotations)
	}
	return n
}

// Partition randomly splits ids into disjoint train and val sets whose union is the input set.
//
// The val set receives round(valRatio*len(ids)) identifiers. The result only depends on the set
// of identifiers, valRatio and seed, not on the order of ids. Duplicate identifiers are collapsed.
// Both returned slices are sorted.
func Partition(ids []string, valRatio float64, seed int64) (train, val []string, err error) {
	if valRatio < 0 || valRatio > 1 || math.IsNaN(valRatio) {
		return nil, nil, fmt.Errorf("invalid validation ratio %v, must be in [0, 1]", valRatio)
	}

	unique := make(map[string]struct{}, len(ids))
	shuffled := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := unique[id]; dup {
			continue
		}
		unique[id] = struct{}{}
		shuffled = append(shuffled, id)
	}
	sort.Strings(shuffled)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	numVal := int(math.Round(valRatio * float64(len(shuffled))))
	val = append([]string{}, shuffled[:numVal]...)
	train = append([]string{}, shuffled[numVal:]...)
	sort.Strings(val)
	sort.Strings(train)

	return train, val, nil
}
