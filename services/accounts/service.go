package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"

	"cinematch/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service manages persistence of user accounts.
type Service struct {
	mu       sync.RWMutex
	path     string
	accounts map[string]models.Account
}

// NewService creates an accounts service storing data inside the provided
// directory. A master account is generated on first run with a random
// password, which is logged once so the operator can sign in.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create accounts dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "accounts.json"),
		accounts: make(map[string]models.Account),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	if err := svc.ensureMasterAccount(); err != nil {
		return nil, err
	}

	return svc, nil
}

// List returns all accounts, master first, then by creation time.
func (s *Service) List() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].IsMaster != accounts[j].IsMaster {
			return accounts[i].IsMaster
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return accounts
}

// Get returns the account with the given ID if present.
func (s *Service) Get(id string) (models.Account, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	return account, ok
}

// Create registers a new account. Usernames are unique case-insensitively.
func (s *Service) Create(username, password, displayName string) (models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Account{}, ErrUsernameRequired
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return models.Account{}, ErrPasswordRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(username)
	for _, a := range s.accounts {
		if strings.ToLower(a.Username) == lower {
			return models.Account{}, ErrUsernameExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.accounts[account.ID] = account
	if err := s.saveLocked(); err != nil {
		delete(s.accounts, account.ID)
		return models.Account{}, err
	}
	return account, nil
}

// Authenticate verifies a username/password pair.
func (s *Service) Authenticate(username, pass string) (models.Account, error) {
	username = strings.TrimSpace(strings.ToLower(username))

	s.mu.RLock()
	var account models.Account
	found := false
	for _, a := range s.accounts {
		if strings.ToLower(a.Username) == username {
			account = a
			found = true
			break
		}
	}
	s.mu.RUnlock()

	if !found {
		// Burn a comparison anyway to keep timing uniform.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(pass))
		return models.Account{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(pass)); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// ChangePassword replaces an account's password.
func (s *Service) ChangePassword(id, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.PasswordHash = string(hash)
	account.UpdatedAt = time.Now().UTC()
	s.accounts[id] = account
	return s.saveLocked()
}

// ResetMasterPassword assigns the master account a fresh random password and
// returns it so it can be surfaced to the operator once.
func (s *Service) ResetMasterPassword() (string, error) {
	generated, err := password.Generate(20, 4, 0, false, false)
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}

	s.mu.Lock()
	masterID := ""
	for id, a := range s.accounts {
		if a.IsMaster {
			masterID = id
			break
		}
	}
	s.mu.Unlock()

	if masterID == "" {
		return "", ErrAccountNotFound
	}
	if err := s.ChangePassword(masterID, generated); err != nil {
		return "", err
	}
	return generated, nil
}

// ensureMasterAccount creates the bootstrap master account on first run.
func (s *Service) ensureMasterAccount() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.IsMaster {
			return nil
		}
	}

	generated, err := password.Generate(20, 4, 0, false, false)
	if err != nil {
		return fmt.Errorf("generate master password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(generated), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash master password: %w", err)
	}

	now := time.Now().UTC()
	master := models.Account{
		ID:           uuid.NewString(),
		Username:     models.MasterAccountUsername,
		PasswordHash: string(hash),
		IsMaster:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.accounts[master.ID] = master
	if err := s.saveLocked(); err != nil {
		delete(s.accounts, master.ID)
		return err
	}

	log.Printf("[accounts] created master account %q with password %q - change it after first login",
		master.Username, generated)
	return nil
}

func (s *Service) load() error {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open accounts file: %w", err)
	}
	defer file.Close()

	var stored []models.AccountStorage
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("decode accounts: %w", err)
	}

	s.accounts = make(map[string]models.Account, len(stored))
	for _, as := range stored {
		if strings.TrimSpace(as.ID) == "" {
			continue
		}
		s.accounts[as.ID] = as.ToAccount()
	}
	return nil
}

// saveLocked writes accounts to disk. Must be called with mu held.
func (s *Service) saveLocked() error {
	stored := make([]models.AccountStorage, 0, len(s.accounts))
	for _, a := range s.accounts {
		stored = append(stored, a.ToStorage())
	}

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create accounts temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stored); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode accounts: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close accounts temp file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
