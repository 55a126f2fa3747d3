package domain

// Cursor identifies the exact next dataset row to evaluate when a scan
// resumes. It is monotonically non-decreasing within one query's lifetime
// and resets to the zero value whenever the query terms change.
type Cursor struct {
	// Chunk is the zero-based index of the dataset chunk.
	Chunk int

	// Offset is the zero-based row offset within that chunk.
	Offset int
}

// Before reports whether c points at an earlier row than other.
func (c Cursor) Before(other Cursor) bool {
	if c.Chunk != other.Chunk {
		return c.Chunk < other.Chunk
	}
	return c.Offset < other.Offset
}

// IsZero reports whether the cursor is at the start of the dataset.
func (c Cursor) IsZero() bool {
	return c.Chunk == 0 && c.Offset == 0
}
