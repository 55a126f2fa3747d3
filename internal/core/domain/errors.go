package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery indicates the query text contains forbidden
	// bracket characters. Recovered locally: the input is rejected and
	// the user re-prompted without any cursor change.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrOversized indicates a formatted segment exceeds the transport's
	// message-size ceiling. The caller substitutes a sentinel message and
	// still advances past the offending row.
	ErrOversized = errors.New("content exceeds message limit")

	// ErrEndOfDataset indicates the scan exhausted the dataset with no
	// remaining matches.
	ErrEndOfDataset = errors.New("end of dataset")

	// ErrDatasetUnavailable indicates the dataset could not be fetched or
	// read. Fatal to the current turn only; the session stays resumable.
	ErrDatasetUnavailable = errors.New("dataset unavailable")

	// ErrNoIngredients indicates a search was requested with zero
	// accumulated ingredient terms.
	ErrNoIngredients = errors.New("no ingredients selected")
)
