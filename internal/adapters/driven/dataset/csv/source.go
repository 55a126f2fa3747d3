// Package csv implements the DatasetSource port over a chunked CSV file.
//
// The dataset is scanned as fixed-size chunks of rows. The source keeps a
// byte-offset index of chunk starts as it reads, so a resumed scan seeks
// straight to its chunk instead of re-parsing everything before it. The
// index is invalidated when the file changes on disk.
package csv

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driven"
	"github.com/pantry-labs/gourmet-cli/internal/logger"
)

// DefaultChunkSize is the reference chunk size in rows.
const DefaultChunkSize = 10000

// Ensure Source implements the interface.
var _ driven.DatasetSource = (*Source)(nil)

// columns holds the resolved indexes of the three required text columns.
type columns struct {
	title       int
	ingredients int
	directions  int
}

// Source reads the recipe dataset from a local CSV file, fetching it from
// a configured URL on first use.
type Source struct {
	path      string
	url       string
	chunkSize int
	client    *http.Client

	// mu guards the fetch, the resolved columns and the offset index.
	mu       sync.Mutex
	cols     columns
	haveCols bool
	offsets  []int64 // offsets[i] = byte offset of chunk i's first record

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewSource creates a dataset source for the CSV file at path. If the file
// is missing it is fetched from url on first use. A non-positive chunkSize
// falls back to DefaultChunkSize.
func NewSource(path, url string, chunkSize int) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("dataset path is required")
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating dataset directory: %w", err)
	}

	s := &Source{
		path:      path,
		url:       url,
		chunkSize: chunkSize,
		client:    &http.Client{Timeout: 30 * time.Minute},
		done:      make(chan struct{}),
	}
	s.startWatcher(dir)
	return s, nil
}

// Ready reports whether the dataset file is locally available.
func (s *Source) Ready() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// ChunkSize returns the number of rows per chunk.
func (s *Source) ChunkSize() int {
	return s.chunkSize
}

// Chunks returns an iterator positioned at the given chunk index. When the
// offset index already covers a chunk at or before fromChunk, the iterator
// seeks there directly; rows before the target are otherwise streamed past
// without being materialised.
func (s *Source) Chunks(_ context.Context, fromChunk int) (driven.ChunkIterator, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrDatasetUnavailable, s.path, err)
	}

	it := &iterator{
		src:  s,
		file: file,
		from: fromChunk,
	}

	s.mu.Lock()
	haveCols := s.haveCols
	cols := s.cols
	var base int64
	startChunk := -1
	if n := len(s.offsets); haveCols && n > 0 {
		k := fromChunk
		if k >= n {
			k = n - 1
		}
		base = s.offsets[k]
		startChunk = k
	}
	s.mu.Unlock()

	if startChunk >= 0 {
		if _, err := file.Seek(base, 0); err == nil {
			it.open(base, startChunk, cols)
			logger.Debug("Dataset seek to chunk %d (offset %d)", startChunk, base)
			return it, nil
		}
		// Fall back to a cold start on seek failure.
	}

	if err := it.start(); err != nil {
		file.Close()
		return nil, err
	}
	return it, nil
}

// Close stops the file watcher.
func (s *Source) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// setColumns caches the resolved header columns and the offset of the
// first data record.
func (s *Source) setColumns(cols columns, dataStart int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols = cols
	s.haveCols = true
	if len(s.offsets) == 0 {
		s.offsets = append(s.offsets, dataStart)
	}
}

// recordOffset remembers where the given chunk starts. Offsets are only
// appended in order, so a resumed scan can trust every cached entry.
func (s *Source) recordOffset(chunk int, offset int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chunk == len(s.offsets) {
		s.offsets = append(s.offsets, offset)
	}
}

// invalidate drops the cached columns and offset index. Called when the
// dataset file changes on disk.
func (s *Source) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols = columns{}
	s.haveCols = false
	s.offsets = nil
}

// startWatcher watches the dataset's directory and invalidates the offset
// index when the file is replaced. The source works without a watcher; it
// just loses the seek optimisation after external changes.
func (s *Source) startWatcher(dir string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("Dataset watcher unavailable: %v", err)
		return
	}
	if err := watcher.Add(dir); err != nil {
		logger.Warn("Dataset watcher unavailable for %s: %v", dir, err)
		watcher.Close()
		return
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case <-s.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					logger.Debug("Dataset changed (%s), dropping offset index", event.Op)
					s.invalidate()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Dataset watcher: %v", err)
			}
		}
	}()
}

// resolveColumns maps the header record to the required column indexes.
func resolveColumns(header []string) (columns, error) {
	cols := columns{title: -1, ingredients: -1, directions: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			cols.title = i
		case "ingredients":
			cols.ingredients = i
		case "directions":
			cols.directions = i
		}
	}
	if cols.title < 0 || cols.ingredients < 0 || cols.directions < 0 {
		return cols, fmt.Errorf("%w: dataset is missing a required column (title, ingredients, directions)", domain.ErrDatasetUnavailable)
	}
	return cols, nil
}
