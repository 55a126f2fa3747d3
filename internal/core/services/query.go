package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
)

// forbiddenChars are rejected anywhere in query input before any scan.
// They would otherwise leak into the match patterns built from the text.
const forbiddenChars = "()[]/{}"

// ValidateQueryText rejects input containing bracket characters.
// Returns domain.ErrInvalidQuery wrapped with the offending text.
func ValidateQueryText(text string) error {
	if strings.ContainsAny(text, forbiddenChars) {
		return fmt.Errorf("%w: text contains bracket characters", domain.ErrInvalidQuery)
	}
	return nil
}

// NormalizeName prepares free text as a dish-name query: validated,
// lower-cased and trimmed.
func NormalizeName(text string) (string, error) {
	if err := ValidateQueryText(text); err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(text)), nil
}

// SplitTerms prepares free text as ingredient terms: validated as a whole,
// split on commas, each term lower-cased and trimmed. Empty fragments are
// dropped.
func SplitTerms(text string) ([]string, error) {
	if err := ValidateQueryText(text); err != nil {
		return nil, err
	}

	var terms []string
	for _, part := range strings.Split(text, ",") {
		term := strings.ToLower(strings.TrimSpace(part))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms, nil
}

// MergeTerms appends incoming terms to the accumulated selection,
// preserving insertion order. Adding an already-present term is a no-op.
// The returned slice is a copy; changed reports whether anything was added.
func MergeTerms(existing, incoming []string) (merged []string, changed bool) {
	merged = slices.Clone(existing)
	for _, term := range incoming {
		if slices.Contains(merged, term) {
			continue
		}
		merged = append(merged, term)
		changed = true
	}
	return merged, changed
}

// PopLastTerm removes the most recently added term. Popping an empty
// selection returns the empty selection unchanged.
func PopLastTerm(terms []string) []string {
	if len(terms) == 0 {
		return terms
	}
	return slices.Clone(terms[:len(terms)-1])
}
