package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
	id TEXT PRIMARY KEY NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	authors TEXT,
	published_date TEXT,
	page_count INTEGER,
	print_type TEXT,
	description TEXT,
	identifier TEXT
);

CREATE TABLE IF NOT EXISTS interactions (
	user_id TEXT NOT NULL,
	book_id TEXT NOT NULL,
	PRIMARY KEY (user_id, book_id)
);

CREATE INDEX IF NOT EXISTS idx_interactions_book ON interactions(book_id);
`

// SQLiteStore implements the Store interface on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore instance.
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
	}
}

// Connect opens the database and creates missing tables.
func (s *SQLiteStore) Connect() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			return fmt.Errorf("failed to create tables: %w (close: %v)", err, closeErr)
		}
		return fmt.Errorf("failed to create tables: %w", err)
	}
	s.db = db
	return nil
}

// InsertUser records a user. INSERT OR IGNORE swallows duplicate keys.
func (s *SQLiteStore) InsertUser(id string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO users (id) VALUES (?)", id)
	if err != nil {
		return fmt.Errorf("failed to insert user %s: %w", id, err)
	}
	return nil
}

// InsertBook records a title-only book. An existing row is left untouched,
// including its enriched metadata.
func (s *SQLiteStore) InsertBook(id, title string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO books (id, title) VALUES (?, ?)", id, title)
	if err != nil {
		return fmt.Errorf("failed to insert book %s: %w", id, err)
	}
	return nil
}

// InsertInteraction records a (user, book) edge at most once.
func (s *SQLiteStore) InsertInteraction(userID, bookID string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO interactions (user_id, book_id) VALUES (?, ?)", userID, bookID)
	if err != nil {
		return fmt.Errorf("failed to insert interaction %s/%s: %w", userID, bookID, err)
	}
	return nil
}

// UserExists reports whether a user has already been ingested.
func (s *SQLiteStore) UserExists(id string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM users WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user %s: %w", id, err)
	}
	return true, nil
}

// BookExists reports whether a book has already been ingested.
func (s *SQLiteStore) BookExists(id string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM books WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check book %s: %w", id, err)
	}
	return true, nil
}

// GetBook returns the full record for a book, or nil when unknown.
func (s *SQLiteStore) GetBook(id string) (*Book, error) {
	row := s.db.QueryRow(`
		SELECT id, title, authors, published_date, page_count, print_type, description, identifier
		FROM books WHERE id = ?`, id)

	var book Book
	err := row.Scan(&book.ID, &book.Title, &book.Authors, &book.PublishedDate,
		&book.PageCount, &book.PrintType, &book.Description, &book.Identifier)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %s: %w", id, err)
	}
	return &book, nil
}

// GetBookTitle returns the stored title, or "" when the book is unknown.
func (s *SQLiteStore) GetBookTitle(id string) (string, error) {
	var title string
	err := s.db.QueryRow("SELECT title FROM books WHERE id = ?", id).Scan(&title)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get title for book %s: %w", id, err)
	}
	return title, nil
}

// SearchBooks returns candidates matching any of the keyword clauses, each
// joined with its interaction popularity. Keywords match case-insensitively
// as substrings of the title or the authors field.
func (s *SQLiteStore) SearchBooks(keywords []string) ([]SearchCandidate, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	clauses := make([]string, 0, len(keywords))
	args := make([]any, 0, len(keywords)*2)
	for _, kw := range keywords {
		clauses = append(clauses, `(LOWER(b.title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(b.authors, '')) LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(strings.ToLower(kw)) + "%"
		args = append(args, pattern, pattern)
	}

	query := fmt.Sprintf(`
		SELECT b.id, b.title, COALESCE(b.authors, ''), COUNT(i.user_id)
		FROM books b
		LEFT JOIN interactions i ON i.book_id = b.id
		WHERE %s
		GROUP BY b.id, b.title, b.authors`,
		strings.Join(clauses, " OR "))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []SearchCandidate
	for rows.Next() {
		var c SearchCandidate
		if err := rows.Scan(&c.ID, &c.Title, &c.Authors, &c.Popularity); err != nil {
			return nil, fmt.Errorf("failed to scan search candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search candidates: %w", err)
	}
	return candidates, nil
}

// escapeLike neutralizes LIKE metacharacters so query tokens match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// AllInteractions returns every edge ordered by user then book, so corpus
// building sees a stable sequence within one training run.
func (s *SQLiteStore) AllInteractions() ([]Interaction, error) {
	rows, err := s.db.Query("SELECT user_id, book_id FROM interactions ORDER BY user_id, book_id")
	if err != nil {
		return nil, fmt.Errorf("failed to load interactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var interactions []Interaction
	for rows.Next() {
		var in Interaction
		if err := rows.Scan(&in.UserID, &in.BookID); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}
	return interactions, nil
}

// BooksMissingAuthors returns ids of books whose metadata has not been
// filled yet.
func (s *SQLiteStore) BooksMissingAuthors() ([]string, error) {
	rows, err := s.db.Query("SELECT id FROM books WHERE authors IS NULL OR authors = '' ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list books missing authors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan book id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate book ids: %w", err)
	}
	return ids, nil
}

// UpdateBookFields applies fill-if-missing updates. A non-nil incoming field
// is written only when the stored value is null or empty; present values are
// never overwritten. An empty payload is a no-op.
func (s *SQLiteStore) UpdateBookFields(id string, fields BookFields) error {
	if fields.Empty() {
		return nil
	}

	var sets []string
	var args []any

	addString := func(column string, value *string) {
		if value == nil || *value == "" {
			return
		}
		sets = append(sets, fmt.Sprintf("%s = CASE WHEN %s IS NULL OR %s = '' THEN ? ELSE %s END", column, column, column, column))
		args = append(args, *value)
	}

	addString("title", fields.Title)
	addString("authors", fields.Authors)
	addString("published_date", fields.PublishedDate)
	addString("print_type", fields.PrintType)
	addString("description", fields.Description)
	addString("identifier", fields.Identifier)

	if fields.PageCount != nil && *fields.PageCount > 0 {
		sets = append(sets, "page_count = CASE WHEN page_count IS NULL OR page_count = 0 THEN ? ELSE page_count END")
		args = append(args, *fields.PageCount)
	}

	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE books SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update book %s: %w", id, err)
	}
	return nil
}

// CountUsers returns the number of ingested users.
func (s *SQLiteStore) CountUsers() (int, error) {
	return s.count("users")
}

// CountBooks returns the number of ingested books.
func (s *SQLiteStore) CountBooks() (int, error) {
	return s.count("books")
}

// CountInteractions returns the number of ingested edges.
func (s *SQLiteStore) CountInteractions() (int, error) {
	return s.count("interactions")
}

func (s *SQLiteStore) count(table string) (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
