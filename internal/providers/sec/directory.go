package sec

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/phuslu/log"

	"github.com/azrea/companion/pkg/models"
	"github.com/azrea/companion/pkg/utils"
)

// directory returns the ticker directory snapshot, loading it from the
// on-disk cache when fresh, or fetching and persisting it otherwise.
func (c *Client) directory(ctx context.Context) ([]models.DirectoryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && time.Since(c.loadedAt) < c.ttl {
		return c.snapshot, nil
	}

	if entries, ok := c.readCache(); ok {
		c.snapshot = entries
		c.loadedAt = time.Now()
		return c.snapshot, nil
	}

	entries, err := c.fetchDirectory(ctx)
	if err != nil {
		return nil, err
	}
	c.writeCache(entries)
	c.snapshot = entries
	c.loadedAt = time.Now()
	return c.snapshot, nil
}

// Refresh forces a directory re-fetch, replacing the on-disk snapshot.
func (c *Client) Refresh(ctx context.Context) error {
	entries, err := c.fetchDirectory(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeCache(entries)
	c.snapshot = entries
	c.loadedAt = time.Now()
	return nil
}

// fetchDirectory downloads the full company_tickers.json mapping.
func (c *Client) fetchDirectory(ctx context.Context) ([]models.DirectoryEntry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// EDGAR publishes the directory as {"0": {cik_str, ticker, title}, ...}.
	var raw map[string]directoryRow
	if err := c.http.GetJSON(ctx, c.directoryURL, nil, nil, &raw); err != nil {
		return nil, err
	}

	entries := make([]models.DirectoryEntry, 0, len(raw))
	for _, row := range raw {
		cik, err := row.CIK.Int64()
		if err != nil || cik <= 0 {
			continue
		}
		entries = append(entries, models.DirectoryEntry{
			CIK:    int(cik),
			Ticker: utils.NormalizeTicker(row.Ticker),
			Title:  row.Title,
		})
	}
	return entries, nil
}

// readCache loads the flat JSON snapshot from disk. Returns false when the
// file is missing, unreadable, corrupt, or older than the TTL.
func (c *Client) readCache() ([]models.DirectoryEntry, bool) {
	info, err := os.Stat(c.cachePath)
	if err != nil || time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return nil, false
	}

	var entries []models.DirectoryEntry
	if err := json.Unmarshal(data, &entries); err != nil || len(entries) == 0 {
		log.Warn().Str("path", c.cachePath).Msg("sec: corrupt directory cache, rebuilding")
		return nil, false
	}
	return entries, true
}

// writeCache persists the snapshot as a whole-file replace. Concurrent
// writers race with last-writer-wins semantics, which is acceptable: the
// content is identical and the write is never in-place.
func (c *Client) writeCache(entries []models.DirectoryEntry) {
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0o755); err != nil {
		log.Warn().Err(err).Msg("sec: cannot create cache dir")
		return
	}
	if err := os.WriteFile(c.cachePath, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", c.cachePath).Msg("sec: cannot persist directory cache")
	}
}
