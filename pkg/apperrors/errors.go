package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrEmptyRequest     = errors.New("request text is empty")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5 stars")
	ErrNoGenerator      = errors.New("no text generation provider configured")
	ErrEmptyGeneration  = errors.New("generation provider returned no SQL")
	ErrSchemaDirMissing = errors.New("schema directory does not exist")
)
