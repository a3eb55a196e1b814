// Package sec implements the SEC EDGAR data provider: the ticker-to-CIK
// directory and per-company filing history.
//
// No API key required. Requests must include a descriptive User-Agent with
// a contact address per SEC policy; without one EDGAR may reject the call.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
// Rate limit: 10 requests/second per user-agent.
package sec

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/azrea/companion/internal/config"
	"github.com/azrea/companion/internal/infra"
	"github.com/azrea/companion/pkg/models"
	"github.com/azrea/companion/pkg/utils"
)

const (
	defaultDirectoryURL   = "https://www.sec.gov/files/company_tickers.json"
	defaultSubmissionsURL = "https://data.sec.gov/submissions"

	directoryCacheFile = "company_tickers.json"
)

// Client fetches EDGAR data. It is safe for concurrent use.
type Client struct {
	http           *infra.Client
	limiter        *infra.RateLimiter
	directoryURL   string
	submissionsURL string
	cachePath      string
	ttl            time.Duration

	mu       sync.Mutex
	snapshot []models.DirectoryEntry
	loadedAt time.Time
}

// Option customizes a Client, mainly for tests.
type Option func(*Client)

// WithDirectoryURL overrides the ticker directory endpoint.
func WithDirectoryURL(url string) Option {
	return func(c *Client) { c.directoryURL = url }
}

// WithSubmissionsURL overrides the per-company submissions endpoint.
func WithSubmissionsURL(url string) Option {
	return func(c *Client) { c.submissionsURL = url }
}

// WithCachePath overrides the on-disk directory snapshot location.
func WithCachePath(path string) Option {
	return func(c *Client) { c.cachePath = path }
}

// New creates an EDGAR client using the configured User-Agent, cache
// directory, and directory snapshot TTL.
func New(cfg config.SECConfig, opts ...Option) *Client {
	ttlDays := cfg.DirectoryTTLDays
	if ttlDays <= 0 {
		ttlDays = 7
	}
	c := &Client{
		http:           infra.NewClient(20*time.Second, cfg.UserAgentString()),
		limiter:        infra.NewRateLimiter(10, time.Second),
		directoryURL:   defaultDirectoryURL,
		submissionsURL: defaultSubmissionsURL,
		cachePath:      filepath.Join(cfg.CacheDir, directoryCacheFile),
		ttl:            time.Duration(ttlDays) * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveTicker resolves a ticker symbol to its directory entry (CIK and
// official title). Returns false when the symbol is absent or the
// directory is unavailable; there is no error path.
func (c *Client) ResolveTicker(ctx context.Context, ticker string) (models.DirectoryEntry, bool) {
	ticker = utils.NormalizeTicker(ticker)
	if ticker == "" {
		return models.DirectoryEntry{}, false
	}

	snapshot, err := c.directory(ctx)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("sec: directory unavailable")
		return models.DirectoryEntry{}, false
	}

	// Linear scan: the directory is refreshed rarely and queried
	// interactively, so no secondary index is kept.
	for _, entry := range snapshot {
		if entry.Ticker == ticker {
			return entry, true
		}
	}
	return models.DirectoryEntry{}, false
}

// ResolveTitle resolves an official company title to its directory entry.
// Matching is case-insensitive on the whole title. Returns false when the
// title is absent or the directory is unavailable; there is no error path.
func (c *Client) ResolveTitle(ctx context.Context, title string) (models.DirectoryEntry, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.DirectoryEntry{}, false
	}

	snapshot, err := c.directory(ctx)
	if err != nil {
		log.Warn().Err(err).Str("title", title).Msg("sec: directory unavailable")
		return models.DirectoryEntry{}, false
	}

	for _, entry := range snapshot {
		if strings.EqualFold(entry.Title, title) {
			return entry, true
		}
	}
	return models.DirectoryEntry{}, false
}

// RecentFilings returns up to limit of the most recent filings for a CIK,
// in EDGAR's own order (most recent first). Any fetch or shape failure
// yields an empty slice.
func (c *Client) RecentFilings(ctx context.Context, cik int, limit int) []models.FilingRecord {
	if cik <= 0 || limit <= 0 {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	url := fmt.Sprintf("%s/CIK%010d.json", c.submissionsURL, cik)
	var resp submissionsResponse
	if err := c.http.GetJSON(ctx, url, nil, nil, &resp); err != nil {
		log.Warn().Err(err).Int("cik", cik).Msg("sec: submissions fetch failed")
		return nil
	}

	recent := resp.Filings.Recent
	n := len(recent.Form)
	if len(recent.FilingDate) < n {
		n = len(recent.FilingDate)
	}
	if n > limit {
		n = limit
	}

	filings := make([]models.FilingRecord, 0, n)
	for i := 0; i < n; i++ {
		desc := ""
		if i < len(recent.Description) {
			desc = recent.Description[i]
		}
		filings = append(filings, models.FilingRecord{
			Form:        recent.Form[i],
			Date:        recent.FilingDate[i],
			Description: desc,
		})
	}
	return filings
}
