// Package store persists the user–book interaction graph in SQLite.
package store

// Store defines the persistence surface for users, books and interactions.
// All inserts are insert-if-absent: duplicate-key conflicts are swallowed
// at this boundary and never surface to callers.
type Store interface {
	// Connect establishes a connection and creates missing tables.
	Connect() error

	// InsertUser records a user, silently no-oping on duplicates.
	InsertUser(id string) error

	// InsertBook records a title-only book, silently no-oping on duplicates.
	InsertBook(id, title string) error

	// InsertInteraction records a (user, book) edge, silently no-oping on
	// duplicates.
	InsertInteraction(userID, bookID string) error

	// UserExists reports whether a user has already been ingested.
	UserExists(id string) (bool, error)

	// BookExists reports whether a book has already been ingested.
	BookExists(id string) (bool, error)

	// GetBook returns the full record for a book, or nil when unknown.
	GetBook(id string) (*Book, error)

	// GetBookTitle returns the stored title, or "" when unknown.
	GetBookTitle(id string) (string, error)

	// SearchBooks returns candidates matching any of the keyword clauses.
	// Each keyword matches case-insensitively as a substring of either the
	// title or the authors field. Candidates carry their popularity count.
	SearchBooks(keywords []string) ([]SearchCandidate, error)

	// AllInteractions returns every (user, book) edge in a stable order.
	AllInteractions() ([]Interaction, error)

	// BooksMissingAuthors returns the ids of books whose metadata bundle
	// has not been filled yet.
	BooksMissingAuthors() ([]string, error)

	// UpdateBookFields applies fill-if-missing updates: a field is only
	// written when the stored value is null or empty. A payload with no
	// usable fields is a no-op.
	UpdateBookFields(id string, fields BookFields) error

	// CountUsers returns the number of ingested users.
	CountUsers() (int, error)

	// CountBooks returns the number of ingested books.
	CountBooks() (int, error)

	// CountInteractions returns the number of ingested edges.
	CountInteractions() (int, error)

	// Close closes the underlying connection.
	Close() error
}
