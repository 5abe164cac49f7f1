package library

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Kind names one of the three library stores.
type Kind string

const (
	KindSaved    Kind = "saved"
	KindWatched  Kind = "watched"
	KindDisliked Kind = "disliked"
)

// ErrUnknownKind is returned for store kinds other than saved, watched,
// or disliked.
var ErrUnknownKind = errors.New("unknown library kind")

// Service owns the three library stores and the storage-permission flag that
// gates the saved store. Watched and disliked are never gated.
type Service struct {
	saved    *Store
	watched  *Store
	disliked *Store
	flag     *permissionFlag
}

// NewService loads the stores persisted under storageDir.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, errors.New("storage directory not provided")
	}

	flag, err := loadPermissionFlag(storageDir)
	if err != nil {
		return nil, err
	}

	saved, err := newStore(storageDir, "saved_movies", flag)
	if err != nil {
		return nil, err
	}
	watched, err := newStore(storageDir, "watched_movies", nil)
	if err != nil {
		return nil, err
	}
	disliked, err := newStore(storageDir, "disliked_movies", nil)
	if err != nil {
		return nil, err
	}

	return &Service{saved: saved, watched: watched, disliked: disliked, flag: flag}, nil
}

// Store returns the store for the given kind.
func (s *Service) Store(kind Kind) (*Store, error) {
	switch kind {
	case KindSaved:
		return s.saved, nil
	case KindWatched:
		return s.watched, nil
	case KindDisliked:
		return s.disliked, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Saved returns the saved store.
func (s *Service) Saved() *Store { return s.saved }

// Watched returns the watched store.
func (s *Service) Watched() *Store { return s.watched }

// Disliked returns the disliked store.
func (s *Service) Disliked() *Store { return s.disliked }

// StorageEnabled reports the saved-store permission flag.
func (s *Service) StorageEnabled() bool {
	return s.flag.Enabled()
}

// SetStoragePermission persists the saved-store permission flag. Disabling
// the flag hard-deletes all saved entries; re-enabling does not restore them.
func (s *Service) SetStoragePermission(enabled bool) {
	s.flag.Set(enabled)
	if !enabled {
		s.saved.Clear()
	}
}

// ExclusionList unions movie names across all three stores, deduplicated
// while preserving first-seen order. It feeds the recommendation prompt so
// the model avoids titles the user already knows.
func (s *Service) ExclusionList() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, store := range []*Store{s.saved, s.watched, s.disliked} {
		for _, name := range store.Names() {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// permissionFlag is the persisted saved-store gate. The value lives in its
// own file so toggling it never touches store payloads directly.
type permissionFlag struct {
	mu      sync.Mutex
	path    string
	enabled bool
}

func loadPermissionFlag(dir string) (*permissionFlag, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	f := &permissionFlag{path: filepath.Join(dir, "storage_permission")}
	data, err := os.ReadFile(f.path)
	if err == nil {
		f.enabled = strings.TrimSpace(string(data)) == "true"
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("[library] permission flag read failed, treating as disabled: %v", err)
	}
	return f, nil
}

func (f *permissionFlag) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *permissionFlag) Set(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled

	value := "false"
	if enabled {
		value = "true"
	}
	if err := os.WriteFile(f.path, []byte(value), 0o644); err != nil {
		log.Printf("[library] permission flag write failed: %v", err)
	}
}
