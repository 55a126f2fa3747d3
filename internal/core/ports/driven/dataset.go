package driven

import (
	"context"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
)

// DatasetSource exposes the recipe dataset as an ordered sequence of
// fixed-size chunks. The dataset is read-only; implementations must support
// resuming at an arbitrary chunk without loading earlier chunks into memory.
type DatasetSource interface {
	// Ready reports whether the dataset is locally available without
	// triggering a fetch.
	Ready() bool

	// Ensure makes the dataset available, fetching it once if missing.
	// Safe to call from concurrent sessions; the fetch is idempotent.
	Ensure(ctx context.Context) error

	// Chunks returns an iterator positioned at the given chunk index.
	// Returns domain.ErrDatasetUnavailable if the dataset cannot be read.
	Chunks(ctx context.Context, fromChunk int) (ChunkIterator, error)

	// ChunkSize returns the number of rows per chunk.
	ChunkSize() int

	// Close releases resources held by the source.
	Close() error
}

// ChunkIterator walks dataset chunks in order. It is not safe for
// concurrent use; each scan obtains its own iterator.
type ChunkIterator interface {
	// Next returns the next chunk's index and rows. The final chunk may
	// hold fewer rows than ChunkSize. Returns domain.ErrEndOfDataset
	// after the last chunk.
	Next(ctx context.Context) (int, []domain.Recipe, error)

	// Close releases the iterator's resources.
	Close() error
}
