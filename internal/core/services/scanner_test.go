package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// fakeSource implements driven.DatasetSource over in-memory chunks.
type fakeSource struct {
	chunks    [][]domain.Recipe
	notReady  bool
	ensureErr error
	chunksErr error
	ensures   int
}

func (s *fakeSource) Ready() bool { return !s.notReady }

func (s *fakeSource) Ensure(_ context.Context) error {
	s.ensures++
	if s.ensureErr != nil {
		return s.ensureErr
	}
	s.notReady = false
	return nil
}

func (s *fakeSource) Chunks(_ context.Context, fromChunk int) (driven.ChunkIterator, error) {
	if s.chunksErr != nil {
		return nil, s.chunksErr
	}
	return &fakeIterator{chunks: s.chunks, pos: fromChunk}, nil
}

func (s *fakeSource) ChunkSize() int {
	if len(s.chunks) == 0 {
		return 0
	}
	return len(s.chunks[0])
}

func (s *fakeSource) Close() error { return nil }

// fakeIterator walks fakeSource chunks from a starting index.
type fakeIterator struct {
	chunks [][]domain.Recipe
	pos    int
}

func (it *fakeIterator) Next(_ context.Context) (int, []domain.Recipe, error) {
	if it.pos >= len(it.chunks) {
		return 0, nil, domain.ErrEndOfDataset
	}
	idx := it.pos
	it.pos++
	return idx, it.chunks[idx], nil
}

func (it *fakeIterator) Close() error { return nil }

// scatteredDataset builds chunks with "egg" matches spread across several
// chunks, interleaved with non-matching rows.
func scatteredDataset() *fakeSource {
	egg := func(title string) domain.Recipe {
		return domain.Recipe{Title: title, Ingredients: `["2 eggs", "salt"]`}
	}
	plain := func(title string) domain.Recipe {
		return domain.Recipe{Title: title, Ingredients: `["flour", "water"]`}
	}
	return &fakeSource{chunks: [][]domain.Recipe{
		{plain("Bread"), egg("Omelette"), plain("Pasta"), egg("Fried Eggs")},
		{plain("Rice"), plain("Soup")},
		{egg("Quiche"), plain("Salad"), egg("Pancakes")},
		{plain("Stew"), egg("Custard")},
	}}
}

func collectAllPages(t *testing.T, s *Scanner, query domain.Query, pageSize int) []domain.Recipe {
	t.Helper()

	var all []domain.Recipe
	cursor := domain.Cursor{}
	for {
		page, err := s.ScanNextPage(context.Background(), query, cursor, pageSize)
		require.NoError(t, err)
		all = append(all, page.Rows...)
		if page.Exhausted {
			return all
		}
		require.NotEmpty(t, page.Rows, "non-exhausted page must hold rows")
		cursor = page.Cursor
	}
}

func bruteForce(source *fakeSource, query domain.Query) []domain.Recipe {
	match, err := CompileQuery(query)
	if err != nil {
		panic(err)
	}
	var all []domain.Recipe
	for _, chunk := range source.chunks {
		for _, row := range chunk {
			if match(row) {
				all = append(all, row)
			}
		}
	}
	return all
}

// --- Tests ---

func TestScanner_FullEnumerationMatchesBruteForce(t *testing.T) {
	source := scatteredDataset()
	scanner := NewScanner(source)
	query := domain.IngredientQuery{Terms: []string{"egg"}}

	want := bruteForce(source, query)
	require.Len(t, want, 5)

	for _, pageSize := range []int{1, 2, 3, 10} {
		got := collectAllPages(t, scanner, query, pageSize)
		assert.Equal(t, want, got, "pageSize=%d", pageSize)
	}
}

func TestScanner_NoDuplicatesAcrossPages(t *testing.T) {
	source := scatteredDataset()
	scanner := NewScanner(source)
	query := domain.IngredientQuery{Terms: []string{"egg"}}

	got := collectAllPages(t, scanner, query, 1)

	seen := make(map[string]int)
	for _, row := range got {
		seen[row.Title]++
	}
	for title, n := range seen {
		assert.Equal(t, 1, n, "row %q repeated", title)
	}
}

func TestScanner_IdempotentReentry(t *testing.T) {
	source := scatteredDataset()
	scanner := NewScanner(source)
	query := domain.IngredientQuery{Terms: []string{"egg"}}
	cursor := domain.Cursor{Chunk: 1, Offset: 0}

	first, err := scanner.ScanNextPage(context.Background(), query, cursor, 2)
	require.NoError(t, err)
	second, err := scanner.ScanNextPage(context.Background(), query, cursor, 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScanner_PartialPageSetsExhausted(t *testing.T) {
	source := scatteredDataset()
	scanner := NewScanner(source)
	query := domain.IngredientQuery{Terms: []string{"egg"}}

	page, err := scanner.ScanNextPage(context.Background(), query, domain.Cursor{}, 100)
	require.NoError(t, err)

	assert.Len(t, page.Rows, 5)
	assert.True(t, page.Exhausted)
}

func TestScanner_NoMatchesReturnsEmptyExhausted(t *testing.T) {
	source := scatteredDataset()
	scanner := NewScanner(source)
	query := domain.NameQuery{Text: "moussaka"}
	cursor := domain.Cursor{}

	page, err := scanner.ScanNextPage(context.Background(), query, cursor, 1)
	require.NoError(t, err)

	assert.Empty(t, page.Rows)
	assert.True(t, page.Exhausted)
	assert.Equal(t, cursor, page.Cursor, "cursor stays put when nothing matched")
}

func TestScanner_ResumesMidChunk(t *testing.T) {
	source := scatteredDataset()
	scanner := NewScanner(source)
	query := domain.IngredientQuery{Terms: []string{"egg"}}

	// First page stops inside chunk 0 right after "Omelette".
	page, err := scanner.ScanNextPage(context.Background(), query, domain.Cursor{}, 1)
	require.NoError(t, err)
	require.Equal(t, "Omelette", page.Rows[0].Title)
	assert.Equal(t, domain.Cursor{Chunk: 0, Offset: 2}, page.Cursor)

	// The next page picks up the later match in the same chunk.
	page, err = scanner.ScanNextPage(context.Background(), query, page.Cursor, 1)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Fried Eggs", page.Rows[0].Title)
}

func TestScanner_EarlyStopViaVisitor(t *testing.T) {
	source := scatteredDataset()
	scanner := NewScanner(source)
	query := domain.IngredientQuery{Terms: []string{"egg"}}

	var titles []string
	cur, exhausted, err := scanner.Scan(context.Background(), query, domain.Cursor{}, func(row domain.Recipe, _ domain.Cursor) (bool, error) {
		titles = append(titles, row.Title)
		// Early stop is a caller decision, distinct from exhaustion.
		return len(titles) < 2, nil
	})
	require.NoError(t, err)

	assert.False(t, exhausted)
	assert.Equal(t, []string{"Omelette", "Fried Eggs"}, titles)
	assert.Equal(t, domain.Cursor{Chunk: 0, Offset: 4}, cur)
}

func TestScanner_VisitorErrorLeavesCursorUnchanged(t *testing.T) {
	source := scatteredDataset()
	scanner := NewScanner(source)
	query := domain.IngredientQuery{Terms: []string{"egg"}}
	start := domain.Cursor{Chunk: 0, Offset: 0}

	boom := errors.New("send failed")
	cur, _, err := scanner.Scan(context.Background(), query, start, func(domain.Recipe, domain.Cursor) (bool, error) {
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, start, cur)
}

func TestScanner_CancelledContext(t *testing.T) {
	source := scatteredDataset()
	scanner := NewScanner(source)
	query := domain.IngredientQuery{Terms: []string{"egg"}}
	start := domain.Cursor{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cur, _, err := scanner.Scan(ctx, query, start, func(domain.Recipe, domain.Cursor) (bool, error) {
		return true, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, start, cur, "aborted scan leaves the cursor unchanged")
}

func TestScanner_SourceErrorWrapped(t *testing.T) {
	source := &fakeSource{chunksErr: domain.ErrDatasetUnavailable}
	scanner := NewScanner(source)

	_, _, err := scanner.Scan(context.Background(), domain.NameQuery{Text: "soup"}, domain.Cursor{}, nil)
	assert.ErrorIs(t, err, domain.ErrDatasetUnavailable)
}
