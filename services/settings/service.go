package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrStorageDirRequired is returned when no storage directory is configured.
var ErrStorageDirRequired = errors.New("storage directory not provided")

// values is the persisted settings payload.
type values struct {
	GroqAPIKey string `json:"groqApiKey,omitempty"`
}

// Service persists runtime-editable settings, currently the completion API
// credential. An environment seed may supply an initial key; a value set at
// runtime always wins and survives restarts.
type Service struct {
	mu      sync.RWMutex
	path    string
	current values
	seedKey string
}

// NewService loads settings from storageDir. seedKey optionally provides a
// default credential from the environment.
func NewService(storageDir, seedKey string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}

	svc := &Service{
		path:    filepath.Join(storageDir, "settings.json"),
		seedKey: strings.TrimSpace(seedKey),
	}
	if err := svc.load(); err != nil {
		return nil, err
	}
	return svc, nil
}

// GroqAPIKey returns the configured completion credential, or the seed value
// when none has been set. Empty means not configured.
func (s *Service) GroqAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.GroqAPIKey != "" {
		return s.current.GroqAPIKey
	}
	return s.seedKey
}

// HasGroqAPIKey reports whether a credential is available.
func (s *Service) HasGroqAPIKey() bool {
	return s.GroqAPIKey() != ""
}

// SetGroqAPIKey persists a new credential. An empty value clears the runtime
// setting (falling back to the seed, if any).
func (s *Service) SetGroqAPIKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.GroqAPIKey = strings.TrimSpace(key)
	return s.saveLocked()
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s.current); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	return nil
}

// saveLocked writes settings to disk. Must be called with mu held.
func (s *Service) saveLocked() error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create settings temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.current); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close settings temp file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
