// Package word2vec trains a vector-space model over per-user book sequences
// and answers nearest-neighbor queries. The training procedure is the
// standard skip-gram/CBOW word-embedding algorithm applied to
// books-per-user instead of words-per-sentence.
package word2vec

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	startAlpha = 0.025
	minAlpha   = 0.0001
	maxExp     = 6.0
)

// ErrEmptyCorpus is returned when the corpus yields no vocabulary entries.
var ErrEmptyCorpus = errors.New("corpus contains no books above the minimum count")

// Model holds one trained vector per vocabulary book id. After training or
// loading it is immutable; retraining produces a new Model value.
type Model struct {
	params    Hyperparameters
	trainedAt time.Time

	words  []string
	counts []int
	index  map[string]int

	// vectors is the input embedding matrix, one VectorSize row per word.
	// output is the softmax-side matrix (Huffman nodes or negative targets).
	vectors []float64
	output  []float64
}

// Params returns the hyperparameters the model was trained with.
func (m *Model) Params() Hyperparameters {
	return m.params
}

// TrainedAt returns the training timestamp recorded in the artifact.
func (m *Model) TrainedAt() time.Time {
	return m.trainedAt
}

// VocabSize returns the number of book ids holding a trained vector.
func (m *Model) VocabSize() int {
	return len(m.words)
}

// Contains reports whether a book id is in the vocabulary.
func (m *Model) Contains(bookID string) bool {
	_, ok := m.index[bookID]
	return ok
}

// Train builds the vocabulary from the sentences and trains a fresh model.
func Train(sentences [][]string, params Hyperparameters) (*Model, error) {
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("invalid hyperparameters: %w", err)
	}

	words, counts := buildVocab(sentences, params.MinCount)
	if len(words) == 0 {
		return nil, ErrEmptyCorpus
	}

	index := make(map[string]int, len(words))
	for i, w := range words {
		index[w] = i
	}

	m := &Model{
		params:    params,
		trainedAt: time.Now().UTC(),
		words:     words,
		counts:    counts,
		index:     index,
		vectors:   make([]float64, len(words)*params.VectorSize),
		output:    make([]float64, len(words)*params.VectorSize),
	}

	// Small random init for input vectors, zero init for the output side,
	// matching the reference word2vec initialization.
	rng := rand.New(rand.NewSource(params.Seed))
	for i := range m.vectors {
		m.vectors[i] = (rng.Float64() - 0.5) / float64(params.VectorSize)
	}

	slog.Info("Training embedding model",
		"vocab_size", len(words),
		"sentences", len(sentences),
		"model_type", params.ModelType,
		"approximation", params.Approximation,
	)

	m.train(sentences, rng)
	return m, nil
}

// TrainUpdate continues training an existing model over new sentences. The
// existing vocabulary is the frame of reference: ids outside it are skipped,
// no new vectors are allocated. It returns a new Model value; the receiver
// is left untouched so serving processes can keep reading it.
func (m *Model) TrainUpdate(sentences [][]string) (*Model, error) {
	if len(m.words) == 0 {
		return nil, ErrEmptyCorpus
	}

	updated := &Model{
		params:    m.params,
		trainedAt: time.Now().UTC(),
		words:     m.words,
		counts:    m.counts,
		index:     m.index,
		vectors:   append([]float64(nil), m.vectors...),
		output:    append([]float64(nil), m.output...),
	}

	slog.Info("Updating embedding model",
		"vocab_size", len(m.words),
		"sentences", len(sentences),
	)

	rng := rand.New(rand.NewSource(m.params.Seed))
	updated.train(sentences, rng)
	return updated, nil
}

// train runs the SGD loop over the sentences for the configured epochs.
// Single-threaded on purpose: with a fixed seed the result is reproducible.
func (m *Model) train(sentences [][]string, rng *rand.Rand) {
	params := m.params
	dim := params.VectorSize

	var table []int32
	var codes []huffmanCode
	if params.Approximation == ApproxNegative {
		table = buildUnigramTable(m.counts)
	} else {
		codes = buildHuffmanTree(m.counts)
	}

	// Total in-vocab word count drives the learning-rate decay.
	var corpusWords int
	for _, sentence := range sentences {
		for _, id := range sentence {
			if _, ok := m.index[id]; ok {
				corpusWords++
			}
		}
	}
	totalWords := corpusWords * params.Epochs
	if totalWords == 0 {
		return
	}

	neu1 := make([]float64, dim)
	neu1e := make([]float64, dim)
	processed := 0

	for epoch := 0; epoch < params.Epochs; epoch++ {
		for _, sentence := range sentences {
			// Map to vocabulary indices, dropping out-of-vocab ids.
			ids := make([]int, 0, len(sentence))
			for _, id := range sentence {
				if idx, ok := m.index[id]; ok {
					ids = append(ids, idx)
				}
			}

			for pos, target := range ids {
				alpha := startAlpha * (1.0 - float64(processed)/float64(totalWords+1))
				if alpha < minAlpha {
					alpha = minAlpha
				}
				processed++

				// Sample a reduced window like the reference implementation.
				reduced := rng.Intn(params.Window) + 1
				lo := pos - reduced
				if lo < 0 {
					lo = 0
				}
				hi := pos + reduced
				if hi >= len(ids) {
					hi = len(ids) - 1
				}

				if params.ModelType == ModelCBOW {
					m.trainCBOW(ids, pos, lo, hi, target, alpha, neu1, neu1e, table, codes, rng)
				} else {
					m.trainSkipGram(ids, pos, lo, hi, target, alpha, neu1e, table, codes, rng)
				}
			}
		}
		slog.Debug("Epoch completed", "epoch", epoch+1, "words_processed", processed)
	}
}

// trainCBOW averages the context vectors and nudges them toward the target.
func (m *Model) trainCBOW(ids []int, pos, lo, hi, target int, alpha float64, neu1, neu1e []float64, table []int32, codes []huffmanCode, rng *rand.Rand) {
	dim := m.params.VectorSize

	zero(neu1)
	zero(neu1e)
	contextCount := 0
	for c := lo; c <= hi; c++ {
		if c == pos {
			continue
		}
		floats.Add(neu1, m.row(m.vectors, ids[c]))
		contextCount++
	}
	if contextCount == 0 {
		return
	}
	floats.Scale(1.0/float64(contextCount), neu1)

	m.learnOutput(target, neu1, neu1e, alpha, table, codes, rng)

	for c := lo; c <= hi; c++ {
		if c == pos {
			continue
		}
		floats.Add(m.vectors[ids[c]*dim:(ids[c]+1)*dim], neu1e)
	}
}

// trainSkipGram uses each context word as the input predicting the target.
func (m *Model) trainSkipGram(ids []int, pos, lo, hi, target int, alpha float64, neu1e []float64, table []int32, codes []huffmanCode, rng *rand.Rand) {
	dim := m.params.VectorSize

	for c := lo; c <= hi; c++ {
		if c == pos {
			continue
		}
		input := m.vectors[ids[c]*dim : (ids[c]+1)*dim]
		zero(neu1e)
		m.learnOutput(target, input, neu1e, alpha, table, codes, rng)
		floats.Add(input, neu1e)
	}
}

// learnOutput applies either hierarchical softmax or negative sampling for
// one (hidden, target) pair, updating the output matrix in place and
// accumulating the input-side gradient into neu1e.
func (m *Model) learnOutput(target int, hidden, neu1e []float64, alpha float64, table []int32, codes []huffmanCode, rng *rand.Rand) {
	if m.params.Approximation == ApproxHierarchical {
		path := codes[target]
		for d := range path.code {
			node := int(path.points[d])
			out := m.row(m.output, node)
			f := floats.Dot(hidden, out)
			if f >= maxExp || f <= -maxExp {
				continue
			}
			f = sigmoid(f)
			g := (1.0 - float64(path.code[d]) - f) * alpha
			floats.AddScaled(neu1e, g, out)
			floats.AddScaled(out, g, hidden)
		}
		return
	}

	for d := 0; d <= m.params.NegativeSize; d++ {
		var sample int
		var label float64
		if d == 0 {
			sample = target
			label = 1
		} else {
			sample = int(table[rng.Intn(len(table))])
			if sample == target {
				continue
			}
			label = 0
		}
		out := m.row(m.output, sample)
		f := floats.Dot(hidden, out)
		var g float64
		switch {
		case f > maxExp:
			g = (label - 1.0) * alpha
		case f < -maxExp:
			g = label * alpha
		default:
			g = (label - sigmoid(f)) * alpha
		}
		floats.AddScaled(neu1e, g, out)
		floats.AddScaled(out, g, hidden)
	}
}

func (m *Model) row(matrix []float64, i int) []float64 {
	dim := m.params.VectorSize
	return matrix[i*dim : (i+1)*dim]
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}
