// Package incidents holds the incident record set and the aggregation
// engine that answers filter, KPI, trend and sparkline queries over it.
package incidents

import (
	"sync"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// Repository holds the currently loaded incident record set. Ingestion
// replaces the whole set atomically; readers observe either the old
// generation or the new one in full, never a partial mix.
type Repository struct {
	mu         sync.RWMutex
	records    []domain.IncidentRecord
	generation uint64
}

// NewRepository creates an empty incident repository at generation zero.
func NewRepository() *Repository {
	return &Repository{}
}

// ReplaceAll atomically swaps the active record generation and returns the
// new generation number. The caller must not mutate records afterwards.
func (r *Repository) ReplaceAll(records []domain.IncidentRecord) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = records
	r.generation++
	return r.generation
}

// Snapshot returns the current generation's records together with its
// generation number. The returned slice is the live generation and must be
// treated as read-only; generations are never mutated after the swap.
func (r *Repository) Snapshot() ([]domain.IncidentRecord, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records, r.generation
}

// Generation returns the current generation number.
func (r *Repository) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}
