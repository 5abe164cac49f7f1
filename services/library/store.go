package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cinematch/models"
)

const storeFormatVersion = 1

// permissionChecker gates a store behind a user-controlled flag. A nil
// checker means the store is always enabled.
type permissionChecker interface {
	Enabled() bool
}

// Store is one persisted movie list (saved, watched, or disliked). Entries
// are kept most-recently-added first and deduplicated by the derived movie
// key. Storage failures never propagate: reads degrade to empty, writes
// report false.
type Store struct {
	mu      sync.Mutex
	path    string
	name    string
	gate    permissionChecker
	entries []models.LibraryEntry
	now     func() time.Time
}

// storeFile is the persisted payload. Earlier builds wrote a bare entry
// array; load accepts both shapes.
type storeFile struct {
	Version int                   `json:"version"`
	Entries []models.LibraryEntry `json:"entries"`
}

// newStore loads (or initializes) a store persisted at dir/<name>.json.
func newStore(dir, name string, gate permissionChecker) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	s := &Store{
		path: filepath.Join(dir, name+".json"),
		name: name,
		gate: gate,
		now:  time.Now,
	}
	s.load()
	return s, nil
}

// List returns all entries, most recently added first. A gated store that is
// disabled, a missing file, and a corrupt payload all read as empty.
func (s *Store) List() []models.LibraryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled() {
		return []models.LibraryEntry{}
	}
	out := make([]models.LibraryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Add inserts a movie unless an entry with the same derived key already
// exists. It returns false for duplicates, disabled stores, and persistence
// failures.
func (s *Store) Add(m models.Movie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled() {
		return false
	}

	key := models.MovieKey(m)
	for _, e := range s.entries {
		if e.ID == key {
			return false
		}
	}

	entry := models.LibraryEntry{Movie: m, ID: key, AddedAt: s.now().UTC()}
	updated := append([]models.LibraryEntry{entry}, s.entries...)
	if err := s.persist(updated); err != nil {
		log.Printf("[library] %s: persist add failed: %v", s.name, err)
		return false
	}
	s.entries = updated
	return true
}

// Remove deletes any entry whose key equals id and persists the result.
// The delete is tolerant: removing an absent id still returns true.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled() {
		return false
	}

	filtered := s.entries[:0:0]
	for _, e := range s.entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	if err := s.persist(filtered); err != nil {
		log.Printf("[library] %s: persist remove failed: %v", s.name, err)
		return false
	}
	s.entries = filtered
	return true
}

// Contains reports whether the movie's derived key is present.
func (s *Store) Contains(m models.Movie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled() {
		return false
	}
	key := models.MovieKey(m)
	for _, e := range s.entries {
		if e.ID == key {
			return true
		}
	}
	return false
}

// Count returns the number of entries.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled() {
		return 0
	}
	return len(s.entries)
}

// Clear removes the store file and empties the in-memory list.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[library] %s: clear failed: %v", s.name, err)
	}
}

// Names returns the movie names currently in the store, newest first.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled() {
		return nil
	}
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.Name)
	}
	return names
}

func (s *Store) enabled() bool {
	return s.gate == nil || s.gate.Enabled()
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[library] %s: read failed, starting empty: %v", s.name, err)
		}
		return
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err == nil && file.Entries != nil {
		s.entries = file.Entries
		return
	}

	// Legacy payload: bare entry array.
	var legacy []models.LibraryEntry
	if err := json.Unmarshal(data, &legacy); err == nil {
		s.entries = legacy
		return
	}

	log.Printf("[library] %s: corrupt payload, starting empty", s.name)
}

func (s *Store) persist(entries []models.LibraryEntry) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(storeFile{Version: storeFormatVersion, Entries: entries}); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode store: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
