// Package intel merges the individual data providers into a single
// best-effort company profile.
package intel

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/azrea/companion/pkg/models"
	"github.com/azrea/companion/pkg/utils"
)

// The provider surfaces the service consumes. Each is implemented by the
// corresponding client under internal/providers.

// DirectoryReader resolves tickers and titles and lists filings via
// SEC EDGAR.
type DirectoryReader interface {
	ResolveTicker(ctx context.Context, ticker string) (models.DirectoryEntry, bool)
	ResolveTitle(ctx context.Context, title string) (models.DirectoryEntry, bool)
	RecentFilings(ctx context.Context, cik, limit int) []models.FilingRecord
}

// SummaryReader fetches a Wikipedia page summary.
type SummaryReader interface {
	Summary(ctx context.Context, query, preferredTitle string) models.WikiSummary
}

// LeadershipReader resolves leadership from a Wikidata entity.
type LeadershipReader interface {
	Leadership(ctx context.Context, entityID string) models.Leadership
}

// PriceReader returns a latest share price.
type PriceReader interface {
	Price(ctx context.Context, symbol string) (float64, bool)
}

// NewsReader searches recent news coverage.
type NewsReader interface {
	Search(ctx context.Context, query string, limit int) []models.NewsItem
}

// Service aggregates the providers. Construct with New.
type Service struct {
	directory  DirectoryReader
	summaries  SummaryReader
	leadership LeadershipReader
	prices     PriceReader
	news       NewsReader

	filingLimit int
	newsLimit   int

	now func() time.Time
}

// Limits bound how much each profile pulls from the slower sources.
type Limits struct {
	Filings int
	News    int
}

// New builds the aggregation service.
func New(directory DirectoryReader, summaries SummaryReader, leadership LeadershipReader, prices PriceReader, news NewsReader, limits Limits) *Service {
	if limits.Filings <= 0 {
		limits.Filings = 5
	}
	if limits.News <= 0 {
		limits.News = 5
	}
	return &Service{
		directory:   directory,
		summaries:   summaries,
		leadership:  leadership,
		prices:      prices,
		news:        news,
		filingLimit: limits.Filings,
		newsLimit:   limits.News,
	}
}

// Intel assembles a company profile for query, which may be a ticker
// symbol or a free-text company name. Every source is best-effort: a
// provider that fails simply leaves its section empty, and the call
// itself never fails. A blank query returns an empty profile without
// touching the network.
func (s *Service) Intel(ctx context.Context, query string) *models.CompanyIntel {
	query = strings.TrimSpace(query)
	result := &models.CompanyIntel{FetchedAt: s.clock()}
	if query == "" {
		return result
	}

	// Short alphabetic queries are treated as tickers first; the EDGAR
	// directory confirms or denies. A confirmed ticker pins the official
	// company name, which makes the Wikipedia lookup far more precise
	// than the raw symbol would.
	var preferredTitle string
	if utils.LooksLikeTicker(query) {
		symbol := utils.NormalizeTicker(query)
		result.Ticker = symbol
		if entry, ok := s.directory.ResolveTicker(ctx, symbol); ok {
			result.Name = entry.Title
			result.CIK = entry.CIK
			preferredTitle = entry.Title
		}
	}

	// The summary is part of identity resolution too: on the free-text
	// path its title names the company, and it is the fallback name for a
	// ticker-shaped query the directory had no row for.
	result.Summary = s.summaries.Summary(ctx, query, preferredTitle)

	// When the symbol lookup gave nothing, try the directory once more
	// with the resolved title. A match backfills ticker and CIK for
	// free-text queries, making filings and price reachable on that
	// path as well.
	if result.CIK == 0 && result.Summary.Title != "" {
		if entry, ok := s.directory.ResolveTitle(ctx, result.Summary.Title); ok {
			result.CIK = entry.CIK
			result.Name = entry.Title
			if result.Ticker == "" {
				result.Ticker = entry.Ticker
			}
		}
	}
	if result.Name == "" {
		result.Name = result.Summary.Title
	}
	if result.Name == "" {
		result.Name = query
	}

	// Identity is settled: from here every goroutine only writes its own
	// section, and nothing reads the shared result until Wait returns.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	if item := result.Summary.WikibaseItem; item != "" {
		g.Go(func() error {
			lead := s.leadership.Leadership(gctx, item)
			mu.Lock()
			result.Leadership = lead
			mu.Unlock()
			return nil
		})
	}

	if cik := result.CIK; cik > 0 {
		g.Go(func() error {
			filings := s.directory.RecentFilings(gctx, cik, s.filingLimit)
			mu.Lock()
			result.Filings = filings
			mu.Unlock()
			return nil
		})
	}

	if symbol := result.Ticker; symbol != "" {
		g.Go(func() error {
			if price, ok := s.prices.Price(gctx, symbol); ok {
				mu.Lock()
				result.Price = &price
				mu.Unlock()
			}
			return nil
		})
	}

	newsQuery := result.Name
	g.Go(func() error {
		items := s.news.Search(gctx, newsQuery, s.newsLimit)
		mu.Lock()
		result.News = items
		mu.Unlock()
		return nil
	})

	_ = g.Wait() // goroutines never return errors
	return result
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
