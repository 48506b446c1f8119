package prompt

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a prompt with the requested ID does not exist.
var ErrNotFound = errors.New("prompt not found")

// Prompt is a system-prompt record. Exactly one prompt is active at a time;
// activating a prompt supersedes the previous one (last write wins).
type Prompt struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Version   int       `json:"version"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
	// Source reports where the prompt came from: "default", "memory" or
	// "database".
	Source string `json:"source,omitempty"`
}

// Store manages the prompt collection and the single active prompt.
// Implementations must be safe for concurrent use.
type Store interface {
	// Active returns the currently active prompt, falling back to the
	// built-in default when none has been activated.
	Active(ctx context.Context) (Prompt, error)
	// Save inserts or updates a prompt. When p.IsActive is set, every other
	// prompt is deactivated first.
	Save(ctx context.Context, p Prompt) (Prompt, error)
	// List returns all saved prompts, newest first.
	List(ctx context.Context) ([]Prompt, error)
}

// DefaultActive is what Store.Active returns before any prompt has been
// saved and activated.
func DefaultActive() Prompt {
	return Prompt{
		ID:       "default",
		Name:     "Default Clinic Assistant",
		Content:  DefaultPrompt,
		Version:  1,
		IsActive: true,
		Source:   "default",
	}
}

// MemoryStore is the in-memory Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	prompts  map[string]Prompt
	activeID string
}

// NewMemoryStore creates an empty in-memory prompt store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prompts: make(map[string]Prompt)}
}

// Active returns the active prompt, or the built-in default when none is.
func (s *MemoryStore) Active(ctx context.Context) (Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.activeID != "" {
		if p, ok := s.prompts[s.activeID]; ok {
			return p, nil
		}
	}
	return DefaultActive(), nil
}

// Save inserts or updates a prompt, activating it when p.IsActive is set.
func (s *MemoryStore) Save(ctx context.Context, p Prompt) (Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = time.Now().UTC().Format("20060102150405.000000000")
	}
	if p.Version == 0 {
		p.Version = 1
	}
	p.UpdatedAt = time.Now().UTC()
	p.Source = "memory"

	if p.IsActive {
		for id, existing := range s.prompts {
			if existing.IsActive {
				existing.IsActive = false
				s.prompts[id] = existing
			}
		}
		s.activeID = p.ID
	} else if s.activeID == p.ID {
		s.activeID = ""
	}

	s.prompts[p.ID] = p
	return p, nil
}

// List returns all saved prompts, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Prompt, 0, len(s.prompts))
	for _, p := range s.prompts {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}
