package lexicon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Fetcher downloads a dictionary file and caches it on disk so later runs
// work offline.
type Fetcher struct {
	logger zerolog.Logger
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default with a
// generous timeout; the dictionary is a few megabytes.
func NewFetcher(logger zerolog.Logger, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Fetcher{
		logger: logger.With().Str("component", "lexicon").Logger(),
		client: client,
	}
}

// Ensure returns the lexicon at path, downloading it from url first when
// the file does not exist yet. An empty url disables downloading.
func (f *Fetcher) Ensure(ctx context.Context, path, url string) (*Lexicon, error) {
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking lexicon cache: %w", err)
	}

	if url == "" {
		return nil, fmt.Errorf("lexicon %s not found and no download URL configured", path)
	}
	if err := f.Fetch(ctx, url, path); err != nil {
		return nil, err
	}
	return Load(path)
}

// Fetch downloads url to path, writing through a temporary file so a
// failed download never leaves a truncated dictionary behind.
func (f *Fetcher) Fetch(ctx context.Context, url, path string) error {
	f.logger.Info().Str("url", url).Str("path", path).Msg("Downloading lexicon")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating lexicon directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating lexicon request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading lexicon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading lexicon: unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".lexicon-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("writing lexicon: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing lexicon file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving lexicon into place: %w", err)
	}

	f.logger.Info().Int64("bytes", n).Str("path", path).Msg("Lexicon downloaded")
	return nil
}
