package word2vec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Hyperparameters {
	return Hyperparameters{
		VectorSize:    16,
		Window:        3,
		Epochs:        40,
		NegativeSize:  5,
		MinCount:      1,
		ModelType:     ModelCBOW,
		Approximation: ApproxNegative,
		Seed:          1,
	}
}

// clusteredSentences builds two groups of users whose reading lists never
// overlap, so books within a group should end up closer to each other than
// to any book from the other group.
func clusteredSentences() [][]string {
	var sentences [][]string
	for i := 0; i < 20; i++ {
		sentences = append(sentences, []string{"x1", "x2", "x3"})
		sentences = append(sentences, []string{"y1", "y2", "y3"})
	}
	return sentences
}

func TestTrainRejectsInvalidParams(t *testing.T) {
	params := testParams()
	params.VectorSize = 0
	_, err := Train([][]string{{"b1", "b2"}}, params)
	assert.Error(t, err)
}

func TestTrainEmptyCorpus(t *testing.T) {
	_, err := Train(nil, testParams())
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestMinCountFiltersVocabulary(t *testing.T) {
	params := testParams()
	params.MinCount = 2

	sentences := [][]string{
		{"b1", "b2"},
		{"b1", "b3"},
		{"b3", "b1"},
	}
	model, err := Train(sentences, params)
	require.NoError(t, err)

	assert.True(t, model.Contains("b1"))
	assert.True(t, model.Contains("b3"))
	assert.False(t, model.Contains("b2"), "book below min count must not enter the vocabulary")

	_, err = model.Similar("b2", 3)
	assert.ErrorIs(t, err, ErrNotInVocabulary)
}

func TestSimilarUnknownBook(t *testing.T) {
	model, err := Train([][]string{{"b1", "b2"}}, testParams())
	require.NoError(t, err)

	_, err = model.Similar("never-seen", 4)
	assert.ErrorIs(t, err, ErrNotInVocabulary)
}

func TestSimilarClampsTopN(t *testing.T) {
	model, err := Train([][]string{{"b1", "b2", "b3", "b4", "b5"}}, testParams())
	require.NoError(t, err)
	require.Equal(t, 5, model.VocabSize())

	neighbors, err := model.Similar("b1", 10)
	require.NoError(t, err)
	assert.Len(t, neighbors, 4, "topN must clamp to vocabSize-1")

	for _, n := range neighbors {
		assert.NotEqual(t, "b1", n.BookID, "a book is never its own neighbor")
	}
}

func TestSimilarScoresSortedAndScaled(t *testing.T) {
	model, err := Train(clusteredSentences(), testParams())
	require.NoError(t, err)

	neighbors, err := model.Similar("x1", 5)
	require.NoError(t, err)
	require.Len(t, neighbors, 5)

	for i, n := range neighbors {
		assert.LessOrEqual(t, n.Score, 100.0)
		assert.GreaterOrEqual(t, n.Score, -100.0)
		// two decimal places
		assert.InDelta(t, n.Score, float64(int(n.Score*100))/100, 1e-9)
		if i > 0 {
			assert.LessOrEqual(t, n.Score, neighbors[i-1].Score, "scores must descend")
		}
	}
}

func TestSimilarPrefersCoReadBooks(t *testing.T) {
	model, err := Train(clusteredSentences(), testParams())
	require.NoError(t, err)

	neighbors, err := model.Similar("x1", 5)
	require.NoError(t, err)

	scores := make(map[string]float64, len(neighbors))
	for _, n := range neighbors {
		scores[n.BookID] = n.Score
	}

	for _, coRead := range []string{"x2", "x3"} {
		for _, other := range []string{"y1", "y2", "y3"} {
			assert.Greater(t, scores[coRead], scores[other],
				"%s should be closer to x1 than %s", coRead, other)
		}
	}
}

func TestTrainIsDeterministicForSeed(t *testing.T) {
	sentences := clusteredSentences()

	m1, err := Train(sentences, testParams())
	require.NoError(t, err)
	m2, err := Train(sentences, testParams())
	require.NoError(t, err)

	n1, err := m1.Similar("x1", 5)
	require.NoError(t, err)
	n2, err := m2.Similar("x1", 5)
	require.NoError(t, err)

	assert.Equal(t, n1, n2)
}

func TestSkipGramHierarchical(t *testing.T) {
	params := testParams()
	params.ModelType = ModelSkipGram
	params.Approximation = ApproxHierarchical

	model, err := Train(clusteredSentences(), params)
	require.NoError(t, err)

	neighbors, err := model.Similar("y1", 2)
	require.NoError(t, err)
	assert.Len(t, neighbors, 2)
}

func TestTrainUpdateKeepsVocabularyFrame(t *testing.T) {
	model, err := Train(clusteredSentences(), testParams())
	require.NoError(t, err)

	before, err := model.Similar("x1", 2)
	require.NoError(t, err)

	updated, err := model.TrainUpdate([][]string{
		{"x1", "x2", "brand-new-book"},
	})
	require.NoError(t, err)

	assert.False(t, updated.Contains("brand-new-book"),
		"update mode must not grow the vocabulary")
	assert.Equal(t, model.VocabSize(), updated.VocabSize())

	// the original model is immutable: its answers do not change
	after, err := model.Similar("x1", 2)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	model, err := Train(clusteredSentences(), testParams())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model", "book2vec.model")
	require.NoError(t, model.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, model.Params(), loaded.Params())
	assert.Equal(t, model.VocabSize(), loaded.VocabSize())
	assert.Equal(t, model.TrainedAt().Unix(), loaded.TrainedAt().Unix())

	want, err := model.Similar("x1", 4)
	require.NoError(t, err)
	got, err := loaded.Similar("x1", 4)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.model"))
	assert.Error(t, err)
}
