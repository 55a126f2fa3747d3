package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driven"
)

// degreeEscape is the escaped degree sign as it appears in the raw dataset.
const degreeEscape = `\u00b0`

// renderIngredients turns the serialized ingredient list into one item per
// line: quote-comma becomes a line break, remaining quotes are stripped and
// the list brackets removed.
func renderIngredients(serialized string) string {
	s := strings.ReplaceAll(serialized, `",`, "\n")
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "[", " ")
	return strings.ReplaceAll(s, "]", "")
}

// renderDirections cleans the serialized step list: quote and bracket
// stripping, the escaped degree sign becomes a Celsius marker, and stray
// commas after sentence ends are dropped. The passes run in order because
// quote stripping is what exposes the ".," sequences.
func renderDirections(serialized string) string {
	s := strings.ReplaceAll(serialized, `["`, "")
	s = strings.ReplaceAll(s, `"]`, "")
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, degreeEscape, "\u00b0C")
	return strings.ReplaceAll(s, ".,", ".")
}

// Formatter renders matched rows into bounded-length message segments.
// A segment exceeding the ceiling yields domain.ErrOversized instead of
// text; the caller substitutes a sentinel and still advances past the row.
type Formatter struct {
	limit int
}

// NewFormatter creates a formatter with the given segment ceiling in
// characters. Non-positive values fall back to the transport limit.
func NewFormatter(limit int) *Formatter {
	if limit <= 0 {
		limit = driven.MessageLimit
	}
	return &Formatter{limit: limit}
}

// Limit returns the segment ceiling.
func (f *Formatter) Limit() int {
	return f.limit
}

// Title renders the numbered title line for the n-th recipe shown.
func (f *Formatter) Title(n int, r domain.Recipe) string {
	return fmt.Sprintf("%d. %s", n, r.Title)
}

// Ingredients renders the ingredient block, one item per line under its
// header. Returns domain.ErrOversized when the segment exceeds the ceiling.
func (f *Formatter) Ingredients(r domain.Recipe) (string, error) {
	segment := "The ingredients you need:\n" + renderIngredients(r.Ingredients)
	if utf8.RuneCountInString(segment) > f.limit {
		return "", fmt.Errorf("ingredients for %q: %w", r.Title, domain.ErrOversized)
	}
	return segment, nil
}

// Directions renders the preparation steps under a header naming the dish.
// Returns domain.ErrOversized when the segment exceeds the ceiling.
func (f *Formatter) Directions(r domain.Recipe) (string, error) {
	segment := fmt.Sprintf("Follow these steps to prepare %s:\n%s", r.Title, renderDirections(r.Directions))
	if utf8.RuneCountInString(segment) > f.limit {
		return "", fmt.Errorf("directions for %q: %w", r.Title, domain.ErrOversized)
	}
	return segment, nil
}
