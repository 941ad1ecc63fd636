// Package store keeps aggregated weather snapshots per location.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

// ErrNotFound is returned when a location has no snapshot in the requested window.
var ErrNotFound = errors.New("no weather data for location")

// timeline is the snapshot history of one location, oldest first.
type timeline []weather.Snapshot

// insert places snap by timestamp. A snapshot with the same ID is replaced.
func (t timeline) insert(snap weather.Snapshot) timeline {
	for i := range t {
		if t[i].ID == snap.ID && snap.ID != "" {
			t = append(t[:i], t[i+1:]...)
			break
		}
	}
	i := sort.Search(len(t), func(i int) bool { return t[i].Timestamp.After(snap.Timestamp) })
	t = append(t, weather.Snapshot{})
	copy(t[i+1:], t[i:])
	t[i] = snap
	return t
}

// between returns the inclusive [from, to] window.
func (t timeline) between(from, to time.Time) timeline {
	lo := sort.Search(len(t), func(i int) bool { return !t[i].Timestamp.Before(from) })
	hi := sort.Search(len(t), func(i int) bool { return t[i].Timestamp.After(to) })
	if lo >= hi {
		return nil
	}
	return append(timeline(nil), t[lo:hi]...)
}

// MemoryStore is a concurrency-safe in-memory weather store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]timeline

	maxHistory int           // snapshots kept per location, <= 0 is unlimited
	maxAge     time.Duration // 0 keeps everything

	now func() time.Time
}

// NewMemoryStore creates a MemoryStore with optional count and age limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]timeline),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot records snapshot under loc and applies retention.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.Snapshot) error {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = s.prune(s.data[key].insert(snapshot))
	return nil
}

// prune drops the oldest entries past maxHistory or maxAge. The newest
// snapshot always survives.
func (s *MemoryStore) prune(t timeline) timeline {
	if s.maxHistory > 0 && len(t) > s.maxHistory {
		t = t[len(t)-s.maxHistory:]
	}
	if s.maxAge > 0 && len(t) > 1 {
		cutoff := s.now().Add(-s.maxAge)
		drop := sort.Search(len(t)-1, func(i int) bool { return !t[i].Timestamp.Before(cutoff) })
		t = t[drop:]
	}
	return t
}

// GetLatest returns the most recent snapshot for loc.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.data[loc.Key()]
	if len(t) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return t[len(t)-1], nil
}

// GetRange returns the snapshots for loc between from and to, inclusive.
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.data[loc.Key()].between(from, to)
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
