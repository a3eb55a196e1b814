package intel

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/azrea/companion/pkg/models"
)

// fakeProviders counts every call so tests can assert which sources an
// aggregation touched.
type fakeProviders struct {
	calls atomic.Int64

	entry      models.DirectoryEntry
	entryOK    bool
	titleEntry models.DirectoryEntry
	titleOK    bool
	filings    []models.FilingRecord
	summary    models.WikiSummary
	leadership models.Leadership
	price      float64
	priceOK    bool
	news       []models.NewsItem

	gotSummaryQuery   string
	gotPreferredTitle string
	gotTitleQuery     string
	gotNewsQuery      string
	gotFilingLimit    int
}

func (f *fakeProviders) ResolveTicker(_ context.Context, ticker string) (models.DirectoryEntry, bool) {
	f.calls.Add(1)
	return f.entry, f.entryOK
}

func (f *fakeProviders) ResolveTitle(_ context.Context, title string) (models.DirectoryEntry, bool) {
	f.calls.Add(1)
	f.gotTitleQuery = title
	return f.titleEntry, f.titleOK
}

func (f *fakeProviders) RecentFilings(_ context.Context, cik, limit int) []models.FilingRecord {
	f.calls.Add(1)
	f.gotFilingLimit = limit
	return f.filings
}

func (f *fakeProviders) Summary(_ context.Context, query, preferredTitle string) models.WikiSummary {
	f.calls.Add(1)
	f.gotSummaryQuery = query
	f.gotPreferredTitle = preferredTitle
	return f.summary
}

func (f *fakeProviders) Leadership(_ context.Context, entityID string) models.Leadership {
	f.calls.Add(1)
	return f.leadership
}

func (f *fakeProviders) Price(_ context.Context, symbol string) (float64, bool) {
	f.calls.Add(1)
	return f.price, f.priceOK
}

func (f *fakeProviders) Search(_ context.Context, query string, limit int) []models.NewsItem {
	f.calls.Add(1)
	f.gotNewsQuery = query
	return f.news
}

func newService(f *fakeProviders) *Service {
	return New(f, f, f, f, f, Limits{Filings: 5, News: 5})
}

func TestIntelBlankQueryTouchesNothing(t *testing.T) {
	f := &fakeProviders{}
	s := newService(f)

	for _, q := range []string{"", "   ", "\t\n"} {
		got := s.Intel(context.Background(), q)
		if got == nil {
			t.Fatalf("Intel(%q) = nil", q)
		}
		if got.Name != "" || got.Ticker != "" || got.CIK != 0 {
			t.Errorf("Intel(%q) = %+v, want empty profile", q, got)
		}
		if got.FetchedAt.IsZero() {
			t.Errorf("Intel(%q) missing timestamp", q)
		}
	}
	if n := f.calls.Load(); n != 0 {
		t.Errorf("providers called %d times for blank queries, want 0", n)
	}
}

func TestIntelResolvedTicker(t *testing.T) {
	price := 232.14
	f := &fakeProviders{
		entry:   models.DirectoryEntry{CIK: 320193, Ticker: "AAPL", Title: "Apple Inc."},
		entryOK: true,
		filings: []models.FilingRecord{{Form: "10-Q", Date: "2025-08-01", Description: "Quarterly report"}},
		summary: models.WikiSummary{Title: "Apple Inc.", Extract: "Technology company.", WikibaseItem: "Q312"},
		leadership: models.Leadership{
			CEO:         []string{"Tim Cook"},
			Chairperson: []string{"Arthur Levinson"},
		},
		price:   price,
		priceOK: true,
		news:    []models.NewsItem{{Title: "Apple launches new chip", URL: "https://example.com/a"}},
	}
	s := newService(f)

	got := s.Intel(context.Background(), "aapl")

	if got.Ticker != "AAPL" || got.Name != "Apple Inc." || got.CIK != 320193 {
		t.Errorf("identity = %q/%q/%d, want AAPL/Apple Inc./320193", got.Ticker, got.Name, got.CIK)
	}
	if f.gotPreferredTitle != "Apple Inc." {
		t.Errorf("preferred title = %q, want the directory name", f.gotPreferredTitle)
	}
	if f.gotTitleQuery != "" {
		t.Error("title lookup ran although the symbol already resolved")
	}
	if got.Price == nil || *got.Price != price {
		t.Errorf("price = %v, want %v", got.Price, price)
	}
	want := []models.FilingRecord{{Form: "10-Q", Date: "2025-08-01", Description: "Quarterly report"}}
	if !reflect.DeepEqual(got.Filings, want) {
		t.Errorf("filings = %v, want %v", got.Filings, want)
	}
	if !reflect.DeepEqual(got.Leadership.CEO, []string{"Tim Cook"}) {
		t.Errorf("leadership = %+v", got.Leadership)
	}
	if len(got.News) != 1 {
		t.Errorf("news = %v, want one item", got.News)
	}
	if f.gotNewsQuery != "Apple Inc." {
		t.Errorf("news query = %q, want the company name", f.gotNewsQuery)
	}
	if f.gotFilingLimit != 5 {
		t.Errorf("filing limit = %d, want 5", f.gotFilingLimit)
	}
}

func TestIntelFreeTextWithoutDirectoryMatch(t *testing.T) {
	f := &fakeProviders{
		summary: models.WikiSummary{Title: "Berkshire Hathaway", Extract: "Holding company."},
	}
	s := newService(f)

	got := s.Intel(context.Background(), "berkshire hathaway")

	if got.Ticker != "" || got.CIK != 0 {
		t.Errorf("unmatched free text produced ticker %q cik %d, want none", got.Ticker, got.CIK)
	}
	if got.Name != "Berkshire Hathaway" {
		t.Errorf("name = %q, want the summary title", got.Name)
	}
	if f.gotPreferredTitle != "" {
		t.Errorf("preferred title = %q, want none for free text", f.gotPreferredTitle)
	}
	if f.gotSummaryQuery != "berkshire hathaway" {
		t.Errorf("summary query = %q", f.gotSummaryQuery)
	}
	if f.gotTitleQuery != "Berkshire Hathaway" {
		t.Errorf("title lookup = %q, want the summary title", f.gotTitleQuery)
	}
	// The news query is the settled name, not the raw input.
	if f.gotNewsQuery != "Berkshire Hathaway" {
		t.Errorf("news query = %q, want the resolved name", f.gotNewsQuery)
	}
}

func TestIntelFreeTextBackfillsFromDirectory(t *testing.T) {
	f := &fakeProviders{
		summary:    models.WikiSummary{Title: "Berkshire Hathaway", Extract: "Holding company."},
		titleEntry: models.DirectoryEntry{CIK: 1067983, Ticker: "BRK-A", Title: "BERKSHIRE HATHAWAY INC"},
		titleOK:    true,
		filings:    []models.FilingRecord{{Form: "10-K", Date: "2025-02-24"}},
		price:      712000,
		priceOK:    true,
	}
	s := newService(f)

	got := s.Intel(context.Background(), "berkshire hathaway")

	if got.Ticker != "BRK-A" || got.CIK != 1067983 {
		t.Errorf("identity = %q/%d, want BRK-A/1067983 via title match", got.Ticker, got.CIK)
	}
	if got.Name != "BERKSHIRE HATHAWAY INC" {
		t.Errorf("name = %q, want the regulatory title once the directory matched", got.Name)
	}
	if len(got.Filings) != 1 {
		t.Errorf("filings = %v, want the backfilled CIK to be used", got.Filings)
	}
	if got.Price == nil {
		t.Error("price missing; want the backfilled ticker to be used")
	}
	if f.gotNewsQuery != "BERKSHIRE HATHAWAY INC" {
		t.Errorf("news query = %q, want the settled name", f.gotNewsQuery)
	}
}

func TestIntelUnresolvedTickerStillTriesOtherSources(t *testing.T) {
	f := &fakeProviders{
		entryOK: false,
		summary: models.WikiSummary{Title: "Zzzt Industries"},
		price:   10,
		priceOK: true,
	}
	s := newService(f)

	got := s.Intel(context.Background(), "zzzt")
	if got.Ticker != "ZZZT" {
		t.Errorf("ticker = %q, want normalized symbol kept", got.Ticker)
	}
	if got.CIK != 0 || got.Filings != nil {
		t.Errorf("unexpected filings for unresolved ticker: cik=%d filings=%v", got.CIK, got.Filings)
	}
	if got.Price == nil || *got.Price != 10 {
		t.Errorf("price = %v, want the quote attempt to proceed", got.Price)
	}
	// The directory gave nothing, so the encyclopedia title names the company.
	if got.Name != "Zzzt Industries" {
		t.Errorf("name = %q, want the summary title", got.Name)
	}
}

func TestIntelLeadershipSkippedWithoutEntity(t *testing.T) {
	f := &fakeProviders{
		summary: models.WikiSummary{Title: "Some Co"},
	}
	s := newService(f)

	before := f.calls.Load()
	got := s.Intel(context.Background(), "some co")
	// summary + title lookup + news: no entity id, no ticker, no cik.
	if n := f.calls.Load() - before; n != 3 {
		t.Errorf("providers called %d times, want 3", n)
	}
	if !got.Leadership.Empty() {
		t.Errorf("leadership = %+v, want empty", got.Leadership)
	}
}

// degradingProviders answers identity and summary but fails everything else.
type degradingProviders struct {
	fakeProviders
}

func (d *degradingProviders) RecentFilings(_ context.Context, cik, limit int) []models.FilingRecord {
	return nil
}

func (d *degradingProviders) Price(_ context.Context, symbol string) (float64, bool) {
	return 0, false
}

func (d *degradingProviders) Search(_ context.Context, query string, limit int) []models.NewsItem {
	return nil
}

func TestIntelDegradesPerSource(t *testing.T) {
	d := &degradingProviders{fakeProviders{
		entry:   models.DirectoryEntry{CIK: 320193, Ticker: "AAPL", Title: "Apple Inc."},
		entryOK: true,
		summary: models.WikiSummary{Title: "Apple Inc.", Extract: "Technology company."},
	}}
	s := New(d, d, d, d, d, Limits{})

	got := s.Intel(context.Background(), "AAPL")
	if got.Name != "Apple Inc." {
		t.Errorf("name = %q, want identity despite failed sources", got.Name)
	}
	if got.Summary.Extract == "" {
		t.Error("summary missing")
	}
	if got.Price != nil || len(got.Filings) != 0 || len(got.News) != 0 {
		t.Errorf("failed sources leaked data: %+v", got)
	}
}

// The news query must come from the settled identity, not whatever the
// shared result happens to hold while goroutines run. Repeated rounds
// keep the scheduler honest.
func TestIntelNewsQueryIsDeterministic(t *testing.T) {
	for i := 0; i < 200; i++ {
		f := &fakeProviders{
			summary: models.WikiSummary{Title: "Acme Holdings", WikibaseItem: "Q99"},
		}
		s := newService(f)
		got := s.Intel(context.Background(), "acme holdings plc")
		if f.gotNewsQuery != "Acme Holdings" {
			t.Fatalf("round %d: news query = %q, want Acme Holdings", i, f.gotNewsQuery)
		}
		if got.Name != "Acme Holdings" {
			t.Fatalf("round %d: name = %q, want Acme Holdings", i, got.Name)
		}
	}
}

func TestLimitsDefaults(t *testing.T) {
	f := &fakeProviders{entry: models.DirectoryEntry{CIK: 1, Ticker: "A", Title: "A Co"}, entryOK: true}
	s := New(f, f, f, f, f, Limits{})

	s.Intel(context.Background(), "A")
	if f.gotFilingLimit != 5 {
		t.Errorf("default filing limit = %d, want 5", f.gotFilingLimit)
	}
}
