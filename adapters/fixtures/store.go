// Package fixtures serves player records from JSON files on disk.
package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"playerscout/domain/roster"
	"playerscout/internal/errors"
	"playerscout/models"

	"github.com/tidwall/gjson"
)

// Store is an in-memory PlayerRepository seeded from a fixtures directory
type Store struct {
	mu      sync.RWMutex
	records []*models.PlayerRecord
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// LoadDir reads every *.json file in dir. A file holds one record or an array of records.
func LoadDir(dir string) (*Store, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}
	sort.Strings(paths)

	store := NewStore()
	for _, path := range paths {
		records, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			if err := store.Upsert(context.Background(), r); err != nil {
				return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
		}
	}

	log.Printf("[Fixtures] Loaded %d players from %d files in %s", len(store.records), len(paths), dir)
	return store, nil
}

// ReadFile decodes the records in a single fixture file
func ReadFile(path string) ([]*models.PlayerRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: invalid JSON", filepath.Base(path))
	}

	if gjson.ParseBytes(data).IsArray() {
		var records []*models.PlayerRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return records, nil
	}

	var record models.PlayerRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return []*models.PlayerRecord{&record}, nil
}

// FindByName returns the best match for name
func (s *Store) FindByName(_ context.Context, name string) (*models.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.records))
	for i, r := range s.records {
		names[i] = r.GeneralInfo.Name
	}
	idx, ok := roster.BestMatch(names, name)
	if !ok {
		return nil, errors.NotFound("player")
	}
	return s.records[idx], nil
}

// Upsert adds a record or replaces the one with the same name
func (s *Store) Upsert(_ context.Context, record *models.PlayerRecord) error {
	if record == nil || strings.TrimSpace(record.GeneralInfo.Name) == "" {
		return errors.InvalidInput("player record requires general_info.name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := roster.Fold(record.GeneralInfo.Name)
	for i, existing := range s.records {
		if roster.Fold(existing.GeneralInfo.Name) == key {
			s.records[i] = record
			return nil
		}
	}
	s.records = append(s.records, record)
	return nil
}

// Count returns the number of stored players
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// All returns the stored records in load order
func (s *Store) All() []*models.PlayerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.PlayerRecord(nil), s.records...)
}
