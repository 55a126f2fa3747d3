package services

import (
	"fmt"
	"regexp"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
)

// MatchFunc decides whether a dataset row satisfies a query. Compiled once
// per scan and applied to every row in order.
type MatchFunc func(domain.Recipe) bool

// namePattern builds the title pattern: the query text as a case-insensitive
// substring bounded by string edges or whitespace, so "egg" never matches
// inside "eggplant".
func namePattern(text string) string {
	return `(?i)(?:^|\s)` + regexp.QuoteMeta(text) + `(?:$|\s)`
}

// termPattern builds the ingredient-token pattern: the term as a standalone
// token with an optional "s" or "es" plural suffix, bounded by string edges
// or quote/space/comma/bracket delimiters as they occur in the serialized
// ingredient lists.
func termPattern(term string) string {
	const boundary = `[\s",\[\]]`
	return `(?i)(?:^|` + boundary + `)` + regexp.QuoteMeta(term) + `(?:es|s)?(?:$|` + boundary + `)`
}

// CompileQuery builds the MatchFunc for a query's variant. Ingredient
// queries are conjunctive: every term must match independently.
func CompileQuery(query domain.Query) (MatchFunc, error) {
	switch q := query.(type) {
	case domain.NameQuery:
		re, err := regexp.Compile(namePattern(q.Text))
		if err != nil {
			return nil, fmt.Errorf("compile name query: %w", err)
		}
		return func(r domain.Recipe) bool {
			if r.Title == "" {
				return false
			}
			return re.MatchString(r.Title)
		}, nil

	case domain.IngredientQuery:
		res := make([]*regexp.Regexp, 0, len(q.Terms))
		for _, term := range q.Terms {
			re, err := regexp.Compile(termPattern(term))
			if err != nil {
				return nil, fmt.Errorf("compile ingredient term %q: %w", term, err)
			}
			res = append(res, re)
		}
		return func(r domain.Recipe) bool {
			if r.Ingredients == "" {
				return false
			}
			for _, re := range res {
				if !re.MatchString(r.Ingredients) {
					return false
				}
			}
			return true
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown query kind", domain.ErrInvalidQuery)
	}
}

// MatchName reports whether the row's title contains text as a
// whole-word-bounded, case-insensitive substring. Rows with a missing
// title never match.
func MatchName(r domain.Recipe, text string) bool {
	match, err := CompileQuery(domain.NameQuery{Text: text})
	if err != nil {
		return false
	}
	return match(r)
}

// MatchIngredients reports whether the row's ingredient text contains every
// term as a standalone, plural-tolerant token. Rows with missing
// ingredients never match.
func MatchIngredients(r domain.Recipe, terms []string) bool {
	match, err := CompileQuery(domain.IngredientQuery{Terms: terms})
	if err != nil {
		return false
	}
	return match(r)
}
