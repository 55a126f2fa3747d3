package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driven"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driving"
	"github.com/pantry-labs/gourmet-cli/internal/logger"
)

// Ensure Scanner implements the interface.
var _ driving.RecipeSearch = (*Scanner)(nil)

// EmitFunc receives each matching row together with the cursor that points
// at the row right after it. Returning false stops the scan with the page
// considered complete; returning true keeps scanning. This is the caller's
// early-stop signal, distinct from dataset exhaustion.
type EmitFunc func(row domain.Recipe, next domain.Cursor) (bool, error)

// Scanner walks the dataset chunk by chunk, applies the query's matcher and
// yields matching rows lazily from a saved cursor. Two consecutive scans
// with accumulating cursors enumerate the full match set in dataset order
// with no duplicates and no omissions.
type Scanner struct {
	source driven.DatasetSource
}

// NewScanner creates a scanner over the given dataset source.
func NewScanner(source driven.DatasetSource) *Scanner {
	return &Scanner{source: source}
}

// Scan streams matches to emit, starting at cursor. It returns the cursor
// for the next row to evaluate and whether the dataset was exhausted.
// On error the input cursor is returned unchanged, so the caller may retry
// the same page safely.
func (s *Scanner) Scan(ctx context.Context, query domain.Query, cursor domain.Cursor, emit EmitFunc) (domain.Cursor, bool, error) {
	match, err := CompileQuery(query)
	if err != nil {
		return cursor, false, err
	}

	logger.Section("Scan")
	logger.Debug("Query: %q (%s), resume at chunk %d offset %d",
		query.Describe(), query.Kind(), cursor.Chunk, cursor.Offset)

	it, err := s.source.Chunks(ctx, cursor.Chunk)
	if err != nil {
		return cursor, false, fmt.Errorf("open dataset: %w", err)
	}
	defer it.Close()

	pos := cursor
	for {
		if err := ctx.Err(); err != nil {
			return cursor, false, err
		}

		idx, rows, err := it.Next(ctx)
		if errors.Is(err, domain.ErrEndOfDataset) {
			logger.Debug("Dataset exhausted at chunk %d offset %d", pos.Chunk, pos.Offset)
			return pos, true, nil
		}
		if err != nil {
			return cursor, false, fmt.Errorf("read chunk %d: %w", pos.Chunk, err)
		}
		if idx < cursor.Chunk {
			continue
		}

		// Resume mid-chunk only in the chunk the cursor names; every
		// later chunk starts at row zero.
		start := 0
		if idx == cursor.Chunk {
			start = cursor.Offset
		}

		for i := start; i < len(rows); i++ {
			if !match(rows[i]) {
				continue
			}
			pos = domain.Cursor{Chunk: idx, Offset: i + 1}
			more, err := emit(rows[i], pos)
			if err != nil {
				return cursor, false, err
			}
			if !more {
				return pos, false, nil
			}
		}
	}
}

// ScanNextPage collects up to pageSize matches starting at cursor.
// A non-positive pageSize collects a single row. The returned page is
// either empty with Exhausted set, or holds at least one row.
func (s *Scanner) ScanNextPage(ctx context.Context, query domain.Query, cursor domain.Cursor, pageSize int) (domain.Page, error) {
	if pageSize <= 0 {
		pageSize = 1
	}

	var rows []domain.Recipe
	cur, exhausted, err := s.Scan(ctx, query, cursor, func(row domain.Recipe, _ domain.Cursor) (bool, error) {
		rows = append(rows, row)
		return len(rows) < pageSize, nil
	})
	if err != nil {
		return domain.Page{Cursor: cursor}, err
	}

	logger.Debug("Page: %d rows, exhausted=%t", len(rows), exhausted)
	return domain.Page{Rows: rows, Cursor: cur, Exhausted: exhausted}, nil
}

// Search implements driving.RecipeSearch.
func (s *Scanner) Search(ctx context.Context, query domain.Query, cursor domain.Cursor, pageSize int) (domain.Page, error) {
	return s.ScanNextPage(ctx, query, cursor, pageSize)
}
