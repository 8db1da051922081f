package book

import "errors"

var (
	// ErrBookNotFound is returned when a book cannot be found by the given identifier.
	ErrBookNotFound = errors.New("book not found")

	// ErrInvalidBookID is returned when the provided book id is empty.
	ErrInvalidBookID = errors.New("invalid book id")

	// ErrAPIUnavailable is returned when the external API is unavailable.
	ErrAPIUnavailable = errors.New("API unavailable")
)
