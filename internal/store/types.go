package store

// User is a crawled reading-log account, keyed by its public user id.
type User struct {
	ID string
}

// Book is a catalog entry. The id is the origin-site book code; metadata
// fields are pointers so "never fetched" is distinguishable from an empty
// value.
type Book struct {
	ID            string
	Title         string
	Authors       *string
	PublishedDate *string
	PageCount     *int
	PrintType     *string
	Description   *string
	Identifier    *string
}

// HasFullMetadata reports whether the lazily filled metadata bundle is
// present. Authors is the sentinel field: crawling only ever records a
// title, so a book with authors has been through enrichment.
func (b *Book) HasFullMetadata() bool {
	return b.Authors != nil && *b.Authors != ""
}

// Interaction is a single user–book edge. A given (user, book) pair is
// stored at most once regardless of how often the crawl revisits it.
type Interaction struct {
	UserID string
	BookID string
}

// SearchCandidate is a keyword-search hit joined with its popularity, the
// number of users who recorded the book.
type SearchCandidate struct {
	ID         string
	Title      string
	Authors    string
	Popularity int
}

// BookFields carries metadata for fill-if-missing updates. Nil fields are
// ignored; non-nil fields are only written when the stored value is absent.
type BookFields struct {
	Title         *string
	Authors       *string
	PublishedDate *string
	PageCount     *int
	PrintType     *string
	Description   *string
	Identifier    *string
}

// Empty reports whether no field carries a usable value.
func (f BookFields) Empty() bool {
	return emptyStr(f.Title) && emptyStr(f.Authors) && emptyStr(f.PublishedDate) &&
		(f.PageCount == nil || *f.PageCount <= 0) &&
		emptyStr(f.PrintType) && emptyStr(f.Description) && emptyStr(f.Identifier)
}

func emptyStr(s *string) bool {
	return s == nil || *s == ""
}
