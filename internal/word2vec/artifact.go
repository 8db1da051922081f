package word2vec

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// artifactFormatVersion is bumped when the on-disk layout changes.
const artifactFormatVersion = 1

// artifact is the gob-encoded on-disk form of a trained model: the vectors
// plus the hyperparameter record and timestamp that produced them.
type artifact struct {
	FormatVersion int
	TrainedAt     time.Time
	Params        Hyperparameters
	Words         []string
	Counts        []int
	Vectors       []float64
	Output        []float64
}

// Save persists the model. The artifact is written to a temporary file in
// the target directory and renamed into place, so a serving process never
// observes a partially written model.
func (m *Model) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary model file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	enc := gob.NewEncoder(tmp)
	encErr := enc.Encode(artifact{
		FormatVersion: artifactFormatVersion,
		TrainedAt:     m.trainedAt,
		Params:        m.params,
		Words:         m.words,
		Counts:        m.counts,
		Vectors:       m.vectors,
		Output:        m.output,
	})
	closeErr := tmp.Close()
	if encErr != nil {
		return fmt.Errorf("failed to encode model artifact: %w", encErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write model artifact: %w", closeErr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to swap model artifact into place: %w", err)
	}
	return nil
}

// Load reads a model artifact from disk. The returned model is immutable;
// callers load it once per serving process and share it across requests.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	var a artifact
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}
	if a.FormatVersion != artifactFormatVersion {
		return nil, fmt.Errorf("unsupported model artifact version %d", a.FormatVersion)
	}

	index := make(map[string]int, len(a.Words))
	for i, w := range a.Words {
		index[w] = i
	}

	return &Model{
		params:    a.Params,
		trainedAt: a.TrainedAt,
		words:     a.Words,
		counts:    a.Counts,
		index:     index,
		vectors:   a.Vectors,
		output:    a.Output,
	}, nil
}
