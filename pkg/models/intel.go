// Package models defines the shared value types exchanged between the
// data providers, the intelligence aggregator, and the local JSON store.
package models

import "time"

// CompanyIntel is the merged, best-effort company record assembled by the
// aggregator. Every field is independently optional: an all-empty record
// means "nothing found", not a failure.
type CompanyIntel struct {
	Ticker     string         `json:"ticker,omitempty"`
	Name       string         `json:"name,omitempty"`
	CIK        int            `json:"cik,omitempty"`
	Summary    WikiSummary    `json:"summary"`
	Filings    []FilingRecord `json:"filings,omitempty"`
	Leadership Leadership     `json:"leadership"`
	Price      *float64       `json:"price,omitempty"`
	News       []NewsItem     `json:"news,omitempty"`
	FetchedAt  time.Time      `json:"fetched_at"`
}

// WikiSummary holds the Wikipedia page summary for a company.
// On lookup failure Title carries the original query and the rest is empty.
type WikiSummary struct {
	Title        string `json:"title"`
	Extract      string `json:"extract"`
	URL          string `json:"url"`
	WikibaseItem string `json:"wikibase_item,omitempty"`
}

// DirectoryEntry is one row of the EDGAR ticker-to-CIK directory. The
// on-disk directory cache is a flat JSON array of these.
type DirectoryEntry struct {
	CIK    int    `json:"cik"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// FilingRecord is one regulatory filing from the EDGAR submissions feed,
// in provider order (most recent first).
type FilingRecord struct {
	Form        string `json:"form"`
	Date        string `json:"date"` // YYYY-MM-DD as published
	Description string `json:"description"`
}

// Leadership holds people/entities extracted from Wikidata claims.
// Each list is deduplicated with first-seen order preserved.
type Leadership struct {
	CEO         []string `json:"ceo,omitempty"`
	Chairperson []string `json:"chairperson,omitempty"`
	Managers    []string `json:"managers,omitempty"`
	Owners      []string `json:"owners,omitempty"`
}

// Empty reports whether no leadership information was found.
func (l Leadership) Empty() bool {
	return len(l.CEO) == 0 && len(l.Chairperson) == 0 &&
		len(l.Managers) == 0 && len(l.Owners) == 0
}

// NewsItem is one article from a news search or RSS headline feed.
type NewsItem struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}
