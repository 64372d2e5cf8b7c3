package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository. It backs tests and the
// CSV-seeded deployment mode where no database is configured.
type MemoryRepository struct {
	mu           sync.RWMutex
	observations map[string][]Observation // per bottleneck, newest first
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		observations: make(map[string][]Observation),
	}
}

// Recent retrieves up to limit observations for a bottleneck, newest first.
func (r *MemoryRepository) Recent(_ context.Context, bottleneckID string, limit int) ([]Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.observations[bottleneckID]
	if limit > len(all) {
		limit = len(all)
	}

	out := make([]Observation, limit)
	copy(out, all[:limit])
	return out, nil
}

// ByHourOfDay retrieves all observations for a bottleneck at the given hour
// of day.
func (r *MemoryRepository) ByHourOfDay(_ context.Context, bottleneckID string, hour int) ([]Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Observation
	for _, obs := range r.observations[bottleneckID] {
		if obs.Hour == hour {
			out = append(out, obs)
		}
	}
	return out, nil
}

// Insert appends an observation, keeping per-bottleneck newest-first order.
func (r *MemoryRepository) Insert(_ context.Context, obs Observation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := append(r.observations[obs.BottleneckID], obs)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	r.observations[obs.BottleneckID] = list
	return nil
}

// Count returns the number of stored observations across all bottlenecks.
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, list := range r.observations {
		total += len(list)
	}
	return total
}
