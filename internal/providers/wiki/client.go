// Package wiki looks up company background from Wikipedia: a title search
// followed by the page summary from the REST v1 API.
//
// No API key required.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/phuslu/log"

	"github.com/azrea/companion/internal/infra"
	"github.com/azrea/companion/pkg/models"
)

const (
	defaultSearchURL  = "https://en.wikipedia.org/w/api.php"
	defaultSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary"
)

// Client fetches Wikipedia page summaries. Safe for concurrent use.
type Client struct {
	http       *infra.Client
	searchURL  string
	summaryURL string
}

// Option customizes a Client, mainly for tests.
type Option func(*Client)

// WithSearchURL overrides the MediaWiki API endpoint.
func WithSearchURL(url string) Option {
	return func(c *Client) { c.searchURL = url }
}

// WithSummaryURL overrides the REST summary endpoint.
func WithSummaryURL(url string) Option {
	return func(c *Client) { c.summaryURL = url }
}

// New builds a Wikipedia client.
func New(userAgent string, opts ...Option) *Client {
	c := &Client{
		http:       infra.NewClient(infra.DefaultTimeout, userAgent),
		searchURL:  defaultSearchURL,
		summaryURL: defaultSummaryURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summary returns the page summary for query. When preferredTitle is
// non-empty it is used as the page title directly and the search step is
// skipped. On any failure the result carries only the original query as
// its title, so callers always have something to display.
func (c *Client) Summary(ctx context.Context, query, preferredTitle string) models.WikiSummary {
	fallback := models.WikiSummary{Title: query}

	title := preferredTitle
	if title == "" {
		found, err := c.search(ctx, query)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("wikipedia search failed")
			return fallback
		}
		if found == "" {
			return fallback
		}
		title = found
	}

	summary, err := c.pageSummary(ctx, title)
	if err != nil {
		log.Warn().Err(err).Str("title", title).Msg("wikipedia summary failed")
		return fallback
	}
	return summary
}

// search resolves a free-text query to the best matching page title via
// the opensearch action. Returns "" when nothing matches.
func (c *Client) search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", "1")
	params.Set("namespace", "0")
	params.Set("format", "json")

	body, err := c.http.Get(ctx, c.searchURL, params, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()

	// The opensearch response is a positional array:
	// [query, [titles], [descriptions], [urls]].
	var raw []json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return "", &infra.FetchError{Kind: infra.FailParse, URL: c.searchURL, Err: err}
	}
	if len(raw) < 2 {
		return "", &infra.FetchError{Kind: infra.FailParse, URL: c.searchURL, Err: fmt.Errorf("opensearch: %d elements", len(raw))}
	}
	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return "", &infra.FetchError{Kind: infra.FailParse, URL: c.searchURL, Err: err}
	}
	if len(titles) == 0 {
		return "", nil
	}
	return titles[0], nil
}

func (c *Client) pageSummary(ctx context.Context, title string) (models.WikiSummary, error) {
	slug := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	endpoint := c.summaryURL + "/" + slug

	var resp summaryResponse
	if err := c.http.GetJSON(ctx, endpoint, nil, nil, &resp); err != nil {
		return models.WikiSummary{}, err
	}
	return models.WikiSummary{
		Title:        resp.Title,
		Extract:      resp.Extract,
		URL:          resp.ContentURLs.Desktop.Page,
		WikibaseItem: resp.WikibaseItem,
	}, nil
}
