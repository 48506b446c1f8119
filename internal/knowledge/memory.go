package knowledge

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is the in-memory Store implementation. All state is scoped to
// the process lifetime; a durable implementation lives in internal/storage.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   map[string]int // insertion sequence, used as a tiebreaker
	seq     int
}

// NewMemoryStore creates an empty in-memory knowledge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		order:   make(map[string]int),
	}
}

// Add inserts an entry, assigning an ID and timestamps when absent.
func (s *MemoryStore) Add(ctx context.Context, entry Entry) (Entry, error) {
	now := time.Now().UTC()
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	if _, ok := s.order[entry.ID]; !ok {
		s.order[entry.ID] = s.seq
		s.seq++
	}
	return entry, nil
}

// Update merges the patch into the entry with the given ID.
func (s *MemoryStore) Update(ctx context.Context, id string, patch Patch) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}

	if patch.Category != nil {
		entry.Category = *patch.Category
	}
	if patch.Title != nil {
		entry.Title = *patch.Title
	}
	if patch.Content != nil {
		entry.Content = *patch.Content
	}
	if patch.Tags != nil {
		entry.Tags = *patch.Tags
	}
	if patch.IsActive != nil {
		entry.IsActive = *patch.IsActive
	}
	entry.UpdatedAt = time.Now().UTC()

	s.entries[id] = entry
	return entry, nil
}

// Delete removes the entry with the given ID. Idempotent.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	delete(s.order, id)
	return nil
}

// List returns entries matching the filter, newest first.
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter.Category != "" && entry.Category != filter.Category {
			continue
		}
		if filter.Active != nil && entry.IsActive != *filter.Active {
			continue
		}
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return s.order[result[i].ID] > s.order[result[j].ID]
	})

	return result, nil
}
