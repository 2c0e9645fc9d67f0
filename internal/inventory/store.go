// Package inventory provides the hardware inventory keyed-record store.
// Records live in memory for the lifetime of the process.
package inventory

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record exists for the given id.
var ErrNotFound = errors.New("inventory record not found")

// Record is one hardware inventory entry.
type Record struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	Location     string    `json:"location"`
	SerialNumber string    `json:"serial_number"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store is an in-memory keyed record store.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	clock   func() time.Time
}

// NewStore creates an empty inventory store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]Record),
		clock:   time.Now,
	}
}

// Create adds a record, assigning it a fresh id.
func (s *Store) Create(rec Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC()
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.records[rec.ID] = rec
	return rec
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// List returns all records sorted by name.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Update replaces the mutable fields of an existing record.
func (s *Store) Update(id string, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}

	existing.Name = rec.Name
	existing.Kind = rec.Kind
	existing.Location = rec.Location
	existing.SerialNumber = rec.SerialNumber
	existing.Notes = rec.Notes
	existing.UpdatedAt = s.clock().UTC()
	s.records[id] = existing
	return existing, nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}
