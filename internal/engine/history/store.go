// Package history keeps the bounded list of past searches.
//
// The list is most-recent first, holds at most MaxEntries entries and never
// contains two entries with the same criteria key. It is loaded once when the
// store is opened and rewritten wholesale after every mutation. Storage
// problems are logged and otherwise ignored: a broken history file must never
// stop a search.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rendis/restfinder/internal/model"
)

const MaxEntries = 10

const fileName = "history.json"

// Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []model.HistoryEntry
	log     zerolog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// Open loads the history at path. An absent or unreadable file yields an
// empty history. An empty path gives a memory-only store.
func Open(path string, logger zerolog.Logger) *Store {
	s := &Store{
		path: path,
		log:  logger.With().Str("component", "history").Logger(),
		now:  time.Now,
	}
	s.entries = s.load()
	return s
}

func (s *Store) load() []model.HistoryEntry {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("reading history, starting empty")
		}
		return nil
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("corrupt history, starting empty")
		return nil
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries
}

// Path returns the backing file, or "" for a memory-only store.
func (s *Store) Path() string {
	return s.path
}

// Entries returns a copy of the history, most recent first.
func (s *Store) Entries() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Record puts entry at the front, dropping any older entry with the same
// key and anything beyond MaxEntries, then persists the list.
func (s *Store) Record(entry model.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entry.Criteria.Key()

	// Remove duplicate
	filtered := make([]model.HistoryEntry, 0, len(s.entries)+1)
	filtered = append(filtered, entry)
	for _, e := range s.entries {
		if e.Criteria.Key() != key {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) > MaxEntries {
		filtered = filtered[:MaxEntries]
	}
	s.entries = filtered

	if err := s.persist(); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("persisting history")
	}
}

// RecordSearch records criteria with the current time.
func (s *Store) RecordSearch(criteria model.SearchCriteria, resultCount int) {
	s.Record(model.HistoryEntry{
		Criteria:    criteria,
		Timestamp:   s.now(),
		ResultCount: resultCount,
	})
}

// Clear empties the history and persists the empty list.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return s.persist()
}

// Replay returns the criteria of entry ready to be searched again. It does
// not start a search.
func (s *Store) Replay(entry model.HistoryEntry) model.SearchCriteria {
	return Replay(entry)
}

// Replay projects the criteria snapshot out of entry. Entries written
// without a rating get the default minimum.
func Replay(entry model.HistoryEntry) model.SearchCriteria {
	c := entry.Criteria
	if c.MinRating == 0 {
		c.MinRating = model.DefaultMinRating
	}
	return c
}

// persist must be called with mu held.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	entries := s.entries
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing history: %w", err)
	}
	return nil
}
