package word2vec

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrNotInVocabulary is returned when a similarity query names a book id the
// model holds no vector for. This is an expected outcome for rarely seen
// books, not a failure of the model.
var ErrNotInVocabulary = errors.New("book id not in model vocabulary")

// Neighbor is one nearest-neighbor hit with its similarity on a 0–100 scale.
type Neighbor struct {
	BookID string
	Score  float64
}

// Similar returns up to topN books closest to bookID by cosine similarity,
// sorted by descending score. Scores are cosine values mapped to a 0–100
// scale and rounded to two decimals for presentation. topN is clamped to
// vocabularySize−1 since the book itself is excluded.
func (m *Model) Similar(bookID string, topN int) ([]Neighbor, error) {
	idx, ok := m.index[bookID]
	if !ok {
		return nil, ErrNotInVocabulary
	}
	if topN <= 0 {
		return nil, nil
	}
	if max := len(m.words) - 1; topN > max {
		topN = max
	}

	target := mat.NewVecDense(m.params.VectorSize, m.row(m.vectors, idx))
	targetNorm := mat.Norm(target, 2)

	neighbors := make([]Neighbor, 0, len(m.words)-1)
	for i := range m.words {
		if i == idx {
			continue
		}
		candidate := mat.NewVecDense(m.params.VectorSize, m.row(m.vectors, i))
		norm := mat.Norm(candidate, 2)
		var cos float64
		if targetNorm > 0 && norm > 0 {
			cos = mat.Dot(target, candidate) / (targetNorm * norm)
		}
		neighbors = append(neighbors, Neighbor{
			BookID: m.words[i],
			Score:  math.Round(cos*10000) / 100,
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Score != neighbors[j].Score {
			return neighbors[i].Score > neighbors[j].Score
		}
		return neighbors[i].BookID < neighbors[j].BookID
	})
	return neighbors[:topN], nil
}
