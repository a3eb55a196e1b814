// Package store persists the user's watchlist, notes, reminders and
// alert rules in a single JSON document on disk.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/azrea/companion/pkg/models"
	"github.com/azrea/companion/pkg/utils"
)

// document is the on-disk layout.
type document struct {
	Watchlist []models.WatchlistEntry `json:"watchlist"`
	Notes     []models.Note           `json:"notes"`
	Reminders []models.Reminder       `json:"reminders"`
	Alerts    []models.AlertRule      `json:"alerts"`
}

// Store is a small single-file document store. Safe for concurrent use
// within one process; a missing or corrupt file starts empty rather
// than failing.
type Store struct {
	path string

	mu  sync.Mutex
	doc document
}

// Open loads the document at path, creating parent directories as needed
// on the first save.
func Open(path string) *Store {
	s := &Store{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("store read failed, starting empty")
		}
		return s
	}
	if err := json.Unmarshal(raw, &s.doc); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("store corrupt, starting empty")
		s.doc = document{}
	}
	return s
}

// save writes the whole document back. Callers hold s.mu.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// --- Watchlist ---

// Watch adds a symbol to the watchlist. Adding an existing symbol is a no-op.
func (s *Store) Watch(symbol string) error {
	symbol = utils.NormalizeTicker(symbol)
	if symbol == "" {
		return fmt.Errorf("empty symbol")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.doc.Watchlist {
		if e.Symbol == symbol {
			return nil
		}
	}
	s.doc.Watchlist = append(s.doc.Watchlist, models.WatchlistEntry{
		Symbol:  symbol,
		AddedAt: time.Now(),
	})
	return s.save()
}

// Unwatch removes a symbol from the watchlist.
func (s *Store) Unwatch(symbol string) error {
	symbol = utils.NormalizeTicker(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.doc.Watchlist[:0]
	for _, e := range s.doc.Watchlist {
		if e.Symbol != symbol {
			kept = append(kept, e)
		}
	}
	s.doc.Watchlist = kept
	return s.save()
}

// Watchlist returns the watched symbols in insertion order.
func (s *Store) Watchlist() []models.WatchlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.WatchlistEntry, len(s.doc.Watchlist))
	copy(out, s.doc.Watchlist)
	return out
}

// --- Notes ---

// AddNote records a free-form note and returns it with its assigned id.
func (s *Store) AddNote(text string) (models.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Note{}, fmt.Errorf("empty note")
	}
	note := models.Note{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Notes = append(s.doc.Notes, note)
	return note, s.save()
}

// Notes returns all notes, oldest first.
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Note, len(s.doc.Notes))
	copy(out, s.doc.Notes)
	return out
}

// DeleteNote removes a note by id.
func (s *Store) DeleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.doc.Notes[:0]
	for _, n := range s.doc.Notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.doc.Notes = kept
	return s.save()
}

// --- Reminders ---

// AddReminder schedules a reminder for due.
func (s *Store) AddReminder(text string, due time.Time) (models.Reminder, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Reminder{}, fmt.Errorf("empty reminder")
	}
	rem := models.Reminder{
		ID:      uuid.NewString(),
		Text:    text,
		DueDate: due,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Reminders = append(s.doc.Reminders, rem)
	return rem, s.save()
}

// Reminders returns all reminders. When pendingOnly is set, completed
// ones are filtered out.
func (s *Store) Reminders(pendingOnly bool) []models.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Reminder, 0, len(s.doc.Reminders))
	for _, r := range s.doc.Reminders {
		if pendingOnly && r.Done {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CompleteReminder marks a reminder done.
func (s *Store) CompleteReminder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Reminders {
		if s.doc.Reminders[i].ID == id {
			s.doc.Reminders[i].Done = true
			return s.save()
		}
	}
	return fmt.Errorf("reminder %s not found", id)
}

// --- Alert rules ---

// AddAlert stores a rule and returns it with its assigned id.
func (s *Store) AddAlert(rule models.AlertRule) (models.AlertRule, error) {
	rule.ID = uuid.NewString()
	rule.Enabled = true
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Alerts = append(s.doc.Alerts, rule)
	return rule, s.save()
}

// Alerts returns all alert rules.
func (s *Store) Alerts() []models.AlertRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AlertRule, len(s.doc.Alerts))
	copy(out, s.doc.Alerts)
	return out
}

// SetAlertEnabled toggles a rule on or off.
func (s *Store) SetAlertEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Alerts {
		if s.doc.Alerts[i].ID == id {
			s.doc.Alerts[i].Enabled = enabled
			return s.save()
		}
	}
	return fmt.Errorf("alert %s not found", id)
}

// DeleteAlert removes a rule by id.
func (s *Store) DeleteAlert(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.doc.Alerts[:0]
	for _, a := range s.doc.Alerts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.doc.Alerts = kept
	return s.save()
}
