// Package corpus turns raw interaction edges into per-user book sequences
// suitable as training sentences for the embedding model.
package corpus

import (
	"sort"

	"github.com/lepinkainen/booksuggest/internal/store"
)

// Corpus maps a user id to the ordered list of distinct book ids that user
// interacted with. It is a derived, disposable view over the interaction
// table; users without a single valid book are excluded.
type Corpus map[string][]string

// Build deduplicates interaction edges, drops edges with an empty book id
// and groups the rest by user. Within a user, book order follows first
// occurrence in the input, so a stable input yields a stable corpus.
func Build(interactions []store.Interaction) Corpus {
	seen := make(map[store.Interaction]bool)
	c := make(Corpus)

	for _, in := range interactions {
		if in.BookID == "" {
			continue
		}
		if seen[in] {
			continue
		}
		seen[in] = true
		c[in.UserID] = append(c[in.UserID], in.BookID)
	}
	return c
}

// Sentences returns one sequence per user, ordered by user id so that a
// single training run always sees the same sentence order.
func (c Corpus) Sentences() [][]string {
	users := make([]string, 0, len(c))
	for user := range c {
		users = append(users, user)
	}
	sort.Strings(users)

	sentences := make([][]string, 0, len(users))
	for _, user := range users {
		sentences = append(sentences, c[user])
	}
	return sentences
}
