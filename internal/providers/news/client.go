// Package news fetches company headlines from NewsAPI and, without any
// key, from public RSS feeds.
package news

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/phuslu/log"

	"github.com/azrea/companion/internal/infra"
	"github.com/azrea/companion/pkg/models"
)

const defaultSearchURL = "https://newsapi.org/v2/everything"

// DefaultFeeds lists the RSS feeds consulted when no NewsAPI key is set.
var DefaultFeeds = []string{
	"https://feeds.a.dj.com/rss/RSSMarketsMain.xml",
	"https://www.prnewswire.com/rss/finance-banking-latest-news.rss",
}

// Client fetches news articles. Safe for concurrent use.
type Client struct {
	http      *infra.Client
	searchURL string
	apiKey    string
	feeds     []string
	cache     *infra.Cache
	parser    *gofeed.Parser
}

// Option customizes a Client, mainly for tests.
type Option func(*Client)

// WithSearchURL overrides the NewsAPI endpoint.
func WithSearchURL(url string) Option {
	return func(c *Client) { c.searchURL = url }
}

// WithFeeds overrides the RSS feed list. An empty list keeps the defaults.
func WithFeeds(feeds []string) Option {
	return func(c *Client) {
		if len(feeds) > 0 {
			c.feeds = feeds
		}
	}
}

// New builds a news client. apiKey may be empty; Search is then a no-op
// and only Headlines produces results.
func New(userAgent, apiKey string, opts ...Option) *Client {
	c := &Client{
		http:      infra.NewClient(infra.DefaultTimeout, userAgent),
		searchURL: defaultSearchURL,
		apiKey:    apiKey,
		feeds:     DefaultFeeds,
		cache:     infra.NewCache(10 * time.Minute),
		parser:    gofeed.NewParser(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns recent articles mentioning query, newest first. Without
// an API key it returns nothing and performs no network calls at all.
func (c *Client) Search(ctx context.Context, query string, limit int) []models.NewsItem {
	if c.apiKey == "" || query == "" || limit <= 0 {
		return nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	headers := map[string]string{"X-Api-Key": c.apiKey}

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.searchURL, params, headers, &resp); err != nil {
		log.Warn().Err(err).Str("query", query).Msg("news search failed")
		return nil
	}

	items := make([]models.NewsItem, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		item := models.NewsItem{
			Title:  a.Title,
			Source: a.Source.Name,
			URL:    a.URL,
		}
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			item.PublishedAt = t
		}
		items = append(items, item)
		if len(items) == limit {
			break
		}
	}
	return items
}

// Headlines returns the latest items across the configured RSS feeds,
// newest first. Results are cached briefly to spare the feeds.
func (c *Client) Headlines(ctx context.Context, limit int) []models.NewsItem {
	if limit <= 0 {
		return nil
	}

	cacheKey := fmt.Sprintf("headlines:%d", limit)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]models.NewsItem)
	}

	var all []models.NewsItem
	for _, feed := range c.feeds {
		items, err := c.fetchFeed(ctx, feed)
		if err != nil {
			log.Warn().Err(err).Str("feed", feed).Msg("rss fetch failed")
			continue
		}
		all = append(all, items...)
	}

	sortByDate(all)
	if len(all) > limit {
		all = all[:limit]
	}

	c.cache.Set(cacheKey, all)
	return all
}

func (c *Client) fetchFeed(ctx context.Context, feedURL string) ([]models.NewsItem, error) {
	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feedURL, err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it.Title == "" || it.Link == "" {
			continue
		}
		item := models.NewsItem{
			Title:  cleanHTML(it.Title),
			Source: feed.Title,
			URL:    it.Link,
		}
		if it.PublishedParsed != nil {
			item.PublishedAt = *it.PublishedParsed
		}
		items = append(items, item)
	}
	return items, nil
}

// sortByDate orders items newest first. Insertion sort, the slices are small.
func sortByDate(items []models.NewsItem) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && items[j].PublishedAt.Before(key.PublishedAt) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
