package csv

import (
	"bufio"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driven"
)

var _ driven.ChunkIterator = (*iterator)(nil)

// iterator walks the dataset file chunk by chunk. It owns its file handle,
// so a concurrent re-download does not disturb an in-flight scan.
type iterator struct {
	src    *Source
	file   *os.File
	reader *stdcsv.Reader
	base   int64 // file offset the reader started at
	chunk  int   // index of the next chunk to read
	from   int   // first chunk the caller wants
	cols   columns
	eof    bool
}

// open positions the iterator at a known chunk boundary. The file must
// already be seeked to base.
func (it *iterator) open(base int64, chunk int, cols columns) {
	it.reader = newReader(it.file)
	it.base = base
	it.chunk = chunk
	it.cols = cols
}

// start reads the header from the beginning of the file and resolves the
// column layout.
func (it *iterator) start() error {
	it.reader = newReader(it.file)
	header, err := it.reader.Read()
	if err != nil {
		return fmt.Errorf("%w: reading dataset header: %v", domain.ErrDatasetUnavailable, err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return err
	}
	it.cols = cols
	it.chunk = 0
	it.src.setColumns(cols, it.reader.InputOffset())
	return nil
}

// Next returns the next chunk of recipes. Chunks before the iterator's
// starting index are streamed past without materialising rows. It returns
// domain.ErrEndOfDataset once the dataset is exhausted.
func (it *iterator) Next(ctx context.Context) (int, []domain.Recipe, error) {
	if it.eof {
		return 0, nil, domain.ErrEndOfDataset
	}

	for it.chunk < it.from {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		if err := it.skipChunk(); err != nil {
			if errors.Is(err, domain.ErrEndOfDataset) {
				it.eof = true
			}
			return 0, nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	rows := make([]domain.Recipe, 0, it.src.chunkSize)
	for len(rows) < it.src.chunkSize {
		record, err := it.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, nil, fmt.Errorf("reading dataset chunk %d: %w", it.chunk, err)
		}
		rows = append(rows, it.recipe(record))
	}

	idx := it.chunk
	it.chunk++
	it.src.recordOffset(it.chunk, it.base+it.reader.InputOffset())

	if len(rows) == 0 {
		it.eof = true
		return 0, nil, domain.ErrEndOfDataset
	}
	if len(rows) < it.src.chunkSize {
		it.eof = true
	}
	return idx, rows, nil
}

// Close releases the underlying file.
func (it *iterator) Close() error {
	return it.file.Close()
}

// skipChunk discards one chunk's worth of records while still recording
// its end offset for later seeks.
func (it *iterator) skipChunk() error {
	for i := 0; i < it.src.chunkSize; i++ {
		if _, err := it.reader.Read(); err != nil {
			if err == io.EOF {
				return domain.ErrEndOfDataset
			}
			return fmt.Errorf("skipping dataset chunk %d: %w", it.chunk, err)
		}
	}
	it.chunk++
	it.src.recordOffset(it.chunk, it.base+it.reader.InputOffset())
	return nil
}

// recipe maps a CSV record onto the domain type. Missing trailing fields
// become empty strings rather than errors.
func (it *iterator) recipe(record []string) domain.Recipe {
	field := func(i int) string {
		if i >= 0 && i < len(record) {
			return record[i]
		}
		return ""
	}
	return domain.Recipe{
		Title:       field(it.cols.title),
		Ingredients: field(it.cols.ingredients),
		Directions:  field(it.cols.directions),
	}
}

func newReader(r io.Reader) *stdcsv.Reader {
	cr := stdcsv.NewReader(bufio.NewReaderSize(r, 256<<10))
	cr.FieldsPerRecord = -1
	return cr
}
