package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, s.Connect())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestInsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.InsertUser("alice"))
	require.NoError(t, s.InsertUser("alice"))
	require.NoError(t, s.InsertBook("b1", "Some Title"))
	require.NoError(t, s.InsertBook("b1", "Another Title"))
	require.NoError(t, s.InsertInteraction("alice", "b1"))
	require.NoError(t, s.InsertInteraction("alice", "b1"))

	users, err := s.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 1, users)

	books, err := s.CountBooks()
	require.NoError(t, err)
	assert.Equal(t, 1, books)

	interactions, err := s.CountInteractions()
	require.NoError(t, err)
	assert.Equal(t, 1, interactions)

	// first title wins, duplicate insert never overwrites
	title, err := s.GetBookTitle("b1")
	require.NoError(t, err)
	assert.Equal(t, "Some Title", title)
}

func TestExistenceChecks(t *testing.T) {
	s := newTestStore(t)

	exists, err := s.UserExists("nobody")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.InsertUser("alice"))
	exists, err = s.UserExists("alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.BookExists("b1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.InsertBook("b1", "Title"))
	exists, err = s.BookExists("b1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetBookUnknown(t *testing.T) {
	s := newTestStore(t)

	book, err := s.GetBook("missing")
	require.NoError(t, err)
	assert.Nil(t, book)

	title, err := s.GetBookTitle("missing")
	require.NoError(t, err)
	assert.Equal(t, "", title)
}

func TestUpdateBookFieldsFillIfMissing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertBook("b1", "Original Title"))

	fields := BookFields{
		Authors:   strPtr("Jane Doe"),
		PageCount: intPtr(320),
	}
	require.NoError(t, s.UpdateBookFields("b1", fields))

	book, err := s.GetBook("b1")
	require.NoError(t, err)
	require.NotNil(t, book)
	require.NotNil(t, book.Authors)
	assert.Equal(t, "Jane Doe", *book.Authors)
	require.NotNil(t, book.PageCount)
	assert.Equal(t, 320, *book.PageCount)

	// a second update never replaces present values
	require.NoError(t, s.UpdateBookFields("b1", BookFields{
		Title:     strPtr("Replacement Title"),
		Authors:   strPtr("Someone Else"),
		PageCount: intPtr(999),
	}))

	book, err = s.GetBook("b1")
	require.NoError(t, err)
	assert.Equal(t, "Original Title", book.Title)
	assert.Equal(t, "Jane Doe", *book.Authors)
	assert.Equal(t, 320, *book.PageCount)
}

func TestUpdateBookFieldsEmptyPayloadIsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertBook("b1", "Title"))

	assert.NoError(t, s.UpdateBookFields("b1", BookFields{}))
	assert.NoError(t, s.UpdateBookFields("b1", BookFields{Authors: strPtr("")}))

	book, err := s.GetBook("b1")
	require.NoError(t, err)
	assert.Nil(t, book.Authors)
}

func TestSearchBooksMatchesTitleOrAuthors(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.InsertBook("b1", "The Go Programming Language"))
	require.NoError(t, s.UpdateBookFields("b1", BookFields{Authors: strPtr("Donovan, Kernighan")}))
	require.NoError(t, s.InsertBook("b2", "Learning Python"))
	require.NoError(t, s.UpdateBookFields("b2", BookFields{Authors: strPtr("Mark Lutz")}))
	require.NoError(t, s.InsertBook("b3", "Unrelated"))

	for _, u := range []string{"u1", "u2", "u3"} {
		require.NoError(t, s.InsertUser(u))
		require.NoError(t, s.InsertInteraction(u, "b1"))
	}
	require.NoError(t, s.InsertInteraction("u1", "b2"))

	candidates, err := s.SearchBooks([]string{"go"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "b1", candidates[0].ID)
	assert.Equal(t, 3, candidates[0].Popularity)

	// keyword on authors field
	candidates, err = s.SearchBooks([]string{"lutz"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "b2", candidates[0].ID)
	assert.Equal(t, 1, candidates[0].Popularity)

	// tokens combine with OR
	candidates, err = s.SearchBooks([]string{"go", "python"})
	require.NoError(t, err)
	assert.Len(t, candidates, 2)

	candidates, err = s.SearchBooks([]string{"nonexistent"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSearchBooksTreatsLikeMetacharactersLiterally(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.InsertBook("b1", "100% Orange"))
	require.NoError(t, s.InsertBook("b2", "1000 Oranges"))
	require.NoError(t, s.InsertBook("b3", "snake_case style"))
	require.NoError(t, s.InsertBook("b4", "snakeXcase style"))

	// "%" must not act as a wildcard
	candidates, err := s.SearchBooks([]string{"100%"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "b1", candidates[0].ID)

	// "_" must not match an arbitrary character
	candidates, err = s.SearchBooks([]string{"snake_case"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "b3", candidates[0].ID)

	// a literal backslash in the query stays a literal backslash
	candidates, err = s.SearchBooks([]string{`a\b`})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestAllInteractionsStableOrder(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.InsertInteraction("u2", "b1"))
	require.NoError(t, s.InsertInteraction("u1", "b2"))
	require.NoError(t, s.InsertInteraction("u1", "b1"))

	interactions, err := s.AllInteractions()
	require.NoError(t, err)
	assert.Equal(t, []Interaction{
		{UserID: "u1", BookID: "b1"},
		{UserID: "u1", BookID: "b2"},
		{UserID: "u2", BookID: "b1"},
	}, interactions)
}

func TestBooksMissingAuthors(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.InsertBook("b1", "Filled"))
	require.NoError(t, s.UpdateBookFields("b1", BookFields{Authors: strPtr("Someone")}))
	require.NoError(t, s.InsertBook("b2", "Empty"))

	ids, err := s.BooksMissingAuthors()
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, ids)
}
