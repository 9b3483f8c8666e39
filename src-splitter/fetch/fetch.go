// The `fetch` package retrieves the upstream ICS feed and reports whether
// it changed since the last run. HTTP mode honors ETag/Last-Modified and
// falls back to a content hash; local mode hashes the fallback file. State
// lives in the upstream_states table.
package fetch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/uptrace/bun"

	"icalsplit/src-splitter/model"
	"icalsplit/src-splitter/utils"
)

const userAgent = "icalsplit/1.0"

type Fetcher struct {
	client *http.Client
	db     *bun.DB
}

func New(db *bun.DB) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		db: db,
	}
}

func hashBytes(b []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(b))
}

// FetchIfChanged returns the upstream ICS bytes only if the content changed
// since the last run; (nil, nil) means "unchanged, nothing to do". With a
// blank sourceURL the local fallback file is used instead.
func (f *Fetcher) FetchIfChanged(ctx context.Context, sourceURL, localFallback string) ([]byte, error) {
	if sourceURL == "" {
		return f.fetchLocal(ctx, localFallback)
	}
	return f.fetchHTTP(ctx, sourceURL)
}

func (f *Fetcher) fetchLocal(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fetch: can't read local upstream: %w", err)
	}

	state, err := model.GetUpstreamState(ctx, f.db, path)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	newHash := hashBytes(data)
	if state.Mode == "local" && state.Sha256 == newHash {
		slog.Info("upstream (local) unchanged, skipping regeneration")
		return nil, nil
	}

	state.Mode = "local"
	state.Sha256 = newHash
	state.Etag = ""
	state.LastModified = ""
	state.UpdatedAt = time.Now().Unix()
	if err := state.Upsert(ctx, f.db); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	slog.Info("detected change in local upstream, proceeding")
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, sourceURL string) ([]byte, error) {
	state, err := model.GetUpstreamState(ctx, f.db, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	var resp *http.Response
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		if state.Etag != "" {
			req.Header.Set("If-None-Match", state.Etag)
		} else if state.LastModified != "" {
			req.Header.Set("If-Modified-Since", state.LastModified)
		}

		resp, err = f.client.Do(req)
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)); err != nil {
		return nil, fmt.Errorf("fetch: GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		slog.Info("upstream returned 304 Not Modified, skipping regeneration")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: unexpected upstream status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: can't read upstream body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch: upstream body is empty")
	}

	newHash := hashBytes(data)
	if state.Mode == "http" && state.Sha256 == newHash {
		slog.Info("upstream content hash unchanged, skipping regeneration")
		return nil, nil
	}

	state.Mode = "http"
	state.Sha256 = newHash
	state.Etag = resp.Header.Get("ETag")
	state.LastModified = resp.Header.Get("Last-Modified")
	state.UpdatedAt = time.Now().Unix()
	if err := state.Upsert(ctx, f.db); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	slog.Info("detected upstream change, proceeding",
		"url", utils.Redact(sourceURL),
		"etag", state.Etag != "",
		"last_modified", state.LastModified != "")
	return data, nil
}
