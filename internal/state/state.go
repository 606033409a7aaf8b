// Package state persists per-account sync bookkeeping as a single JSON file.
//
// The file is read fully into memory at start and rewritten wholesale after
// each mutation. There is no locking: two concurrent runs race with
// last-writer-wins, which is acceptable for a single-user tool.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AccountState holds the counters and watermarks for one account.
type AccountState struct {
	LastSync      time.Time `json:"last_sync"`
	LastHistoryID uint64    `json:"last_history_id,omitempty"`
	Fetched       int       `json:"fetched"`
	Attachments   int       `json:"attachments"`
	Sent          int       `json:"sent"`
	Drafts        int       `json:"drafts"`
}

// Store maps account emails to their sync state.
type Store struct {
	path     string
	Accounts map[string]*AccountState
}

// Load reads the sync-state file, returning an empty store when the file
// does not exist yet. A loaded store always contains a map.
func Load(path string) (*Store, error) {
	s := &Store{path: path, Accounts: map[string]*AccountState{}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sync state: %w", err)
	}

	if err := json.Unmarshal(data, &s.Accounts); err != nil {
		return nil, fmt.Errorf("parse sync state %s: %w", path, err)
	}
	if s.Accounts == nil {
		s.Accounts = map[string]*AccountState{}
	}
	return s, nil
}

// Account returns the state record for an email, creating it on first use.
func (s *Store) Account(email string) *AccountState {
	if st, ok := s.Accounts[email]; ok {
		return st
	}
	st := &AccountState{}
	s.Accounts[email] = st
	return st
}

// Save rewrites the whole file. No partial or append writes.
func (s *Store) Save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(s.Accounts, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write sync state: %w", err)
	}
	return nil
}
