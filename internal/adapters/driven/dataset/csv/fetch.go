package csv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
	"github.com/pantry-labs/gourmet-cli/internal/logger"
)

// Ensure makes the dataset file available locally, downloading it from the
// configured URL when missing. Concurrent callers share one download.
func (s *Source) Ensure(ctx context.Context) error {
	if s.Ready() {
		return nil
	}
	if s.url == "" {
		return fmt.Errorf("%w: no dataset file at %s and no download URL configured", domain.ErrDatasetUnavailable, s.path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have finished the download while we waited.
	if s.Ready() {
		return nil
	}

	logger.Info("Downloading dataset from %s", s.url)
	if err := s.download(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDatasetUnavailable, err)
	}
	logger.Info("Dataset saved to %s", s.path)
	return nil
}

// download fetches the dataset into a temporary file and renames it into
// place, so a partial download never shows up as a usable dataset.
func (s *Source) download(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching dataset: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".recipes-*.csv")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("moving dataset into place: %w", err)
	}
	return nil
}
