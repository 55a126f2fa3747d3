package domain

import "strings"

// QueryKind discriminates the two search modes.
type QueryKind string

const (
	// QueryByName searches dish titles for a whole-word substring.
	QueryByName QueryKind = "name"

	// QueryByIngredients searches for rows containing every selected
	// ingredient (conjunctive semantics).
	QueryByIngredients QueryKind = "ingredients"
)

// Query is the tagged union of the two search modes. A session holds at
// most one Query at a time; nil means no query is pending.
type Query interface {
	// Kind returns the query's discriminator.
	Kind() QueryKind

	// Describe returns the human-readable request text used in replies,
	// e.g. `greek salad` or `tomato, egg`.
	Describe() string
}

// NameQuery matches dish titles containing the text as a whole-word-bounded,
// case-insensitive substring.
type NameQuery struct {
	// Text is the lower-cased, trimmed dish name.
	Text string
}

// Kind implements Query.
func (q NameQuery) Kind() QueryKind { return QueryByName }

// Describe implements Query.
func (q NameQuery) Describe() string { return q.Text }

// IngredientQuery matches rows whose ingredient text contains every term as
// a standalone token, tolerating "s"/"es" plural suffixes. Terms are
// lower-cased, trimmed and deduplicated; order records insertion so the most
// recently added term can be removed.
type IngredientQuery struct {
	// Terms is the ordered, deduplicated ingredient selection.
	Terms []string
}

// Kind implements Query.
func (q IngredientQuery) Kind() QueryKind { return QueryByIngredients }

// Describe implements Query.
func (q IngredientQuery) Describe() string { return strings.Join(q.Terms, ", ") }

// Empty reports whether no ingredients have been selected yet.
func (q IngredientQuery) Empty() bool { return len(q.Terms) == 0 }
