package knowledge

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrNotFound is returned when an entry with the requested ID does not exist.
var ErrNotFound = errors.New("knowledge entry not found")

// Source identifies how a knowledge entry entered the system.
const (
	SourceManual = "manual"
	SourceUpload = "upload"
	SourceDrive  = "drive"
)

// Entry is a single categorized piece of clinic knowledge. Entries are
// injected into the system prompt when active; inactive entries are retained
// for history but excluded from prompt composition.
type Entry struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	IsActive     bool      `json:"is_active"`
	Source       string    `json:"source"`
	FileName     string    `json:"file_name,omitempty"`
	OriginFileID string    `json:"origin_file_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Patch describes a partial update to an entry. Nil fields are left
// unchanged; UpdatedAt is always refreshed on a successful update.
type Patch struct {
	Category *string
	Title    *string
	Content  *string
	Tags     *[]string
	IsActive *bool
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	// Category matches entries with this exact category. Empty means all.
	Category string
	// Active filters on IsActive when non-nil.
	Active *bool
}

// Store is the mutable collection of knowledge entries. Implementations must
// be safe for concurrent use.
type Store interface {
	// Add inserts an entry, assigning an ID and timestamps when absent, and
	// returns the stored entry.
	Add(ctx context.Context, entry Entry) (Entry, error)
	// Update merges the patch into the entry with the given ID.
	// Returns ErrNotFound when no such entry exists.
	Update(ctx context.Context, id string, patch Patch) (Entry, error)
	// Delete removes the entry with the given ID. Deleting a missing ID is
	// a no-op, not an error.
	Delete(ctx context.Context, id string) error
	// List returns entries matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]Entry, error)
}

// NewID generates an entry ID from the current unix-millisecond timestamp
// plus a short random suffix. Uniqueness is probabilistic, which is adequate
// for the entry volume this store sees.
func NewID() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 7)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), suffix)
}
