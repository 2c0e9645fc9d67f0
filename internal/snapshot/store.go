// Package snapshot provides the time-ordered dashboard snapshot store and
// the periodic scheduler that feeds it.
package snapshot

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// ErrNonMonotonicAppend signals an append whose timestamp does not exceed
// the last stored snapshot. It indicates a scheduling or clock problem and
// the snapshot is rejected rather than silently reordered.
var ErrNonMonotonicAppend = errors.New("snapshot timestamp does not exceed last stored snapshot")

// Store is the append-only, time-ordered store of dashboard snapshots for
// the lifetime of the process. The scheduler is its sole writer; readers
// may query concurrently and never observe an entry outside the retention
// window as current.
type Store struct {
	mu        sync.RWMutex
	snapshots []domain.DashboardSnapshot
	clock     func() time.Time
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{clock: time.Now}
}

// newStoreWithClock is used by tests to pin "now" for trim behavior.
func newStoreWithClock(clock func() time.Time) *Store {
	return &Store{clock: clock}
}

// Append adds a snapshot to the end of the sequence and trims entries that
// fell out of the retention window, as one atomic unit with respect to
// readers. Returns ErrNonMonotonicAppend if takenAt is not strictly after
// the last stored snapshot.
func (s *Store) Append(snapshot domain.DashboardSnapshot, retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.snapshots); n > 0 {
		last := s.snapshots[n-1].TakenAt
		if !snapshot.TakenAt.After(last) {
			return fmt.Errorf("%w: last %s, got %s",
				ErrNonMonotonicAppend,
				domain.FormatTimestamp(last),
				domain.FormatTimestamp(snapshot.TakenAt))
		}
	}

	s.snapshots = append(s.snapshots, snapshot)
	s.trimLocked(retention)
	return nil
}

// RangeQuery returns all snapshots with takenAt in [from, to], ascending.
func (s *Store) RangeQuery(from, to time.Time) []domain.DashboardSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Snapshots are sorted ascending, so binary search both bounds.
	lo := sort.Search(len(s.snapshots), func(i int) bool {
		return !s.snapshots[i].TakenAt.Before(from)
	})
	hi := sort.Search(len(s.snapshots), func(i int) bool {
		return s.snapshots[i].TakenAt.After(to)
	})

	if lo >= hi {
		return nil
	}
	out := make([]domain.DashboardSnapshot, hi-lo)
	copy(out, s.snapshots[lo:hi])
	return out
}

// Len returns the number of stored snapshots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// Latest returns the most recent snapshot, or false if the store is empty.
func (s *Store) Latest() (domain.DashboardSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.snapshots) == 0 {
		return domain.DashboardSnapshot{}, false
	}
	return s.snapshots[len(s.snapshots)-1], true
}

// Trim drops snapshots older than now minus the retention window.
func (s *Store) Trim(retention time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trimLocked(retention)
}

func (s *Store) trimLocked(retention time.Duration) {
	cutoff := s.clock().Add(-retention)
	keep := sort.Search(len(s.snapshots), func(i int) bool {
		return !s.snapshots[i].TakenAt.Before(cutoff)
	})
	if keep == 0 {
		return
	}
	s.snapshots = append([]domain.DashboardSnapshot(nil), s.snapshots[keep:]...)
}
