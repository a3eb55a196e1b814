// Package alerts evaluates stored alert rules against live market data
// and fires notifications when they trip.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/azrea/companion/pkg/models"
)

// BuyoutKeywords are the default headline keywords for keyword rules
// created without their own list.
var BuyoutKeywords = []string{
	"acquisition", "merger", "buyout", "takeover",
	"acquire", "tender offer", "going private",
}

// QuoteSource supplies current prices.
type QuoteSource interface {
	Price(ctx context.Context, symbol string) (float64, bool)
}

// HeadlineSource supplies recent headlines.
type HeadlineSource interface {
	Headlines(ctx context.Context, limit int) []models.NewsItem
}

// FilingSource supplies company filings.
type FilingSource interface {
	ResolveTicker(ctx context.Context, ticker string) (models.DirectoryEntry, bool)
	RecentFilings(ctx context.Context, cik, limit int) []models.FilingRecord
}

// RuleSource lists the rules to evaluate.
type RuleSource interface {
	Alerts() []models.AlertRule
}

// Event describes one tripped rule.
type Event struct {
	RuleID  string
	Type    string
	Symbol  string
	Message string
	At      time.Time
}

// NotifyFunc receives tripped alerts.
type NotifyFunc func(Event)

// Manager evaluates alert rules. Each distinct trigger fires once per
// manager lifetime; restarting the process re-arms everything.
type Manager struct {
	rules   RuleSource
	quotes  QuoteSource
	news    HeadlineSource
	filings FilingSource
	notify  NotifyFunc

	mu   sync.Mutex
	seen map[string]bool
}

// NewManager builds a manager. notify must not be nil.
func NewManager(rules RuleSource, quotes QuoteSource, news HeadlineSource, filings FilingSource, notify NotifyFunc) *Manager {
	return &Manager{
		rules:   rules,
		quotes:  quotes,
		news:    news,
		filings: filings,
		notify:  notify,
		seen:    map[string]bool{},
	}
}

// Tick evaluates every enabled rule once.
func (m *Manager) Tick(ctx context.Context) {
	for _, rule := range m.rules.Alerts() {
		if !rule.Enabled {
			continue
		}
		switch rule.Type {
		case models.AlertPrice:
			m.checkPrice(ctx, rule)
		case models.AlertKeyword:
			m.checkKeywords(ctx, rule)
		case models.AlertLegal:
			m.checkFilings(ctx, rule)
		default:
			log.Warn().Str("rule", rule.ID).Str("type", rule.Type).Msg("unknown alert type")
		}
	}
}

func (m *Manager) checkPrice(ctx context.Context, rule models.AlertRule) {
	price, ok := m.quotes.Price(ctx, rule.Symbol)
	if !ok {
		return
	}
	// Thresholds are exclusive; a price sitting exactly on one stays quiet.
	if rule.Above != nil && price > *rule.Above {
		m.fire(rule, rule.ID+":above",
			fmt.Sprintf("%s at %.2f, above %.2f", rule.Symbol, price, *rule.Above))
	}
	if rule.Below != nil && price < *rule.Below {
		m.fire(rule, rule.ID+":below",
			fmt.Sprintf("%s at %.2f, below %.2f", rule.Symbol, price, *rule.Below))
	}
}

func (m *Manager) checkKeywords(ctx context.Context, rule models.AlertRule) {
	keywords := rule.Keywords
	if len(keywords) == 0 {
		keywords = BuyoutKeywords
	}
	for _, item := range m.news.Headlines(ctx, 20) {
		title := strings.ToLower(item.Title)
		for _, kw := range keywords {
			if strings.Contains(title, strings.ToLower(kw)) {
				m.fire(rule, rule.ID+":"+item.URL,
					fmt.Sprintf("headline matched %q: %s", kw, item.Title))
				break
			}
		}
	}
}

func (m *Manager) checkFilings(ctx context.Context, rule models.AlertRule) {
	entry, ok := m.filings.ResolveTicker(ctx, rule.Symbol)
	if !ok {
		return
	}
	for _, f := range m.filings.RecentFilings(ctx, entry.CIK, 5) {
		m.fire(rule, fmt.Sprintf("%s:%s:%s", rule.ID, f.Form, f.Date),
			fmt.Sprintf("%s filed %s on %s", rule.Symbol, f.Form, f.Date))
	}
}

func (m *Manager) fire(rule models.AlertRule, key, message string) {
	m.mu.Lock()
	dup := m.seen[key]
	m.seen[key] = true
	m.mu.Unlock()
	if dup {
		return
	}
	m.notify(Event{
		RuleID:  rule.ID,
		Type:    rule.Type,
		Symbol:  rule.Symbol,
		Message: message,
		At:      time.Now(),
	})
}
