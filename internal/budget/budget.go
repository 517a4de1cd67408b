// Package budget holds per-category spending limits. Budgets live with the
// client; the API only receives them with analytics requests.
package budget

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pfm/internal/account"
)

var ErrNegative = errors.New("budget must not be negative")

// Budgets maps a category to its monthly limit.
type Budgets map[string]decimal.Decimal

// Validate rejects negative limits and blank categories.
func (b Budgets) Validate() error {
	for category, limit := range b {
		if strings.TrimSpace(category) == "" {
			return errors.New("budget category must not be empty")
		}

		if limit.IsNegative() {
			return fmt.Errorf("%s: %w", category, ErrNegative)
		}
	}

	return nil
}

// Defaults is the starting set shown to a new user.
func Defaults() Budgets {
	return Budgets{
		"food":      decimal.Zero,
		"transport": decimal.Zero,
		"shopping":  decimal.Zero,
		"bills":     decimal.Zero,
	}
}

// FileStore keeps every account's budgets in one JSON file keyed by
// normalized email.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is budgets.json under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}

	return filepath.Join(dir, "pfm", "budgets.json"), nil
}

// Load returns the stored budgets for email, or Defaults when none exist.
func (s *FileStore) Load(email string) (Budgets, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}

	b, ok := all[account.NormalizeEmail(email)]
	if !ok {
		return Defaults(), nil
	}

	return b, nil
}

func (s *FileStore) Save(email string, b Budgets) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}

	all[account.NormalizeEmail(email)] = b

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding budgets: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating budget dir: %w", err)
	}

	// Write then rename so a crash never leaves a truncated file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing budgets: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing budgets: %w", err)
	}

	return nil
}

func (s *FileStore) readAll() (map[string]Budgets, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]Budgets), nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading budgets: %w", err)
	}

	all := make(map[string]Budgets)
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decoding budgets: %w", err)
	}

	return all, nil
}
