package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lepinkainen/booksuggest/internal/store"
)

func TestBuildDeduplicatesAndDropsEmptyBooks(t *testing.T) {
	interactions := []store.Interaction{
		{UserID: "u1", BookID: "b1"},
		{UserID: "u1", BookID: "b1"},
		{UserID: "u1", BookID: ""},
		{UserID: "u1", BookID: "b2"},
		{UserID: "u2", BookID: "b1"},
	}

	c := Build(interactions)

	assert.Equal(t, Corpus{
		"u1": {"b1", "b2"},
		"u2": {"b1"},
	}, c)
}

func TestBuildExcludesUsersWithoutValidBooks(t *testing.T) {
	interactions := []store.Interaction{
		{UserID: "u1", BookID: ""},
		{UserID: "u2", BookID: "b1"},
	}

	c := Build(interactions)

	_, ok := c["u1"]
	assert.False(t, ok, "user with only empty book ids must not enter the corpus")
	assert.Len(t, c, 1)
}

func TestBuildEmptyInput(t *testing.T) {
	assert.Empty(t, Build(nil))
	assert.Empty(t, Build([]store.Interaction{}))
}

func TestSentencesStableOrder(t *testing.T) {
	c := Corpus{
		"zoe":   {"b3"},
		"alice": {"b1", "b2"},
		"mika":  {"b2"},
	}

	first := c.Sentences()
	second := c.Sentences()

	assert.Equal(t, [][]string{{"b1", "b2"}, {"b2"}, {"b3"}}, first)
	assert.Equal(t, first, second)
}
