package models

import "time"

// Flat records held in the local JSON store. These have no relational
// integrity with the intel pipeline; the store only reads and writes them.

// WatchlistEntry is a tracked symbol.
type WatchlistEntry struct {
	Symbol  string    `json:"symbol"`
	AddedAt time.Time `json:"added_at,omitempty"`
}

// Note is a free-text note.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Reminder is a dated reminder. Done reminders are kept until pruned.
type Reminder struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	DueDate time.Time `json:"due_date"`
	Done    bool      `json:"done"`
}

// Alert rule kinds.
const (
	AlertPrice   = "price"
	AlertKeyword = "keyword"
	AlertLegal   = "legal"
)

// AlertRule is one alert rule. Fields are used per Type:
//   - price:   Symbol plus Above and/or Below thresholds
//   - keyword: Keywords matched against headlines
//   - legal:   Symbol, fires on new SEC filings
type AlertRule struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Symbol   string   `json:"symbol,omitempty"`
	Above    *float64 `json:"above,omitempty"`
	Below    *float64 `json:"below,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Enabled  bool     `json:"enabled"`
}
