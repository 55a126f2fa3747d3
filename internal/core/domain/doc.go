// Package domain defines the core business entities for Gourmet.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Recipe: A single dataset row (title, ingredients, directions)
//   - Cursor: A resumable scan position (chunk index + in-chunk offset)
//   - Query: A tagged union of the two search modes
//   - Session: Per-conversation mutable state
//   - Page: One batch of matches produced by a scan
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
