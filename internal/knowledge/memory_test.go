package knowledge_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-assistant/internal/knowledge"
)

func TestMemoryStore_AddAssignsIDAndTimestamps(t *testing.T) {
	store := knowledge.NewMemoryStore()

	entry, err := store.Add(context.Background(), knowledge.Entry{
		Category: "pricing",
		Title:    "Laser",
		Content:  "From $500",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if entry.ID == "" {
		t.Error("Add() did not assign an ID")
	}
	if entry.CreatedAt.IsZero() || entry.UpdatedAt.IsZero() {
		t.Error("Add() did not set timestamps")
	}
	if entry.Tags == nil {
		t.Error("Add() should normalize nil tags to an empty slice")
	}
}

func TestMemoryStore_AddPreservesProvidedID(t *testing.T) {
	store := knowledge.NewMemoryStore()

	entry, err := store.Add(context.Background(), knowledge.Entry{ID: "fixed-id", Title: "T", Content: "c"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if entry.ID != "fixed-id" {
		t.Errorf("Add() ID = %q, want fixed-id", entry.ID)
	}
}

func TestMemoryStore_Update(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewMemoryStore()

	added, err := store.Add(ctx, knowledge.Entry{Category: "pricing", Title: "Laser", Content: "old", IsActive: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	newContent := "new content"
	inactive := false
	updated, err := store.Update(ctx, added.ID, knowledge.Patch{Content: &newContent, IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Content != newContent {
		t.Errorf("Update() content = %q, want %q", updated.Content, newContent)
	}
	if updated.IsActive {
		t.Error("Update() did not apply IsActive patch")
	}
	// Unpatched fields stay as they were.
	if updated.Title != "Laser" || updated.Category != "pricing" {
		t.Errorf("Update() changed unpatched fields: %+v", updated)
	}
	if updated.UpdatedAt.Before(added.UpdatedAt) {
		t.Error("Update() did not refresh UpdatedAt")
	}
}

func TestMemoryStore_UpdateMissingEntry(t *testing.T) {
	store := knowledge.NewMemoryStore()

	title := "x"
	_, err := store.Update(context.Background(), "no-such-id", knowledge.Patch{Title: &title})
	if !errors.Is(err, knowledge.ErrNotFound) {
		t.Errorf("Update() on missing ID error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewMemoryStore()

	added, err := store.Add(ctx, knowledge.Entry{Title: "T", Content: "c"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := store.Delete(ctx, added.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// Deleting again, or deleting an ID that never existed, is a no-op.
	if err := store.Delete(ctx, added.ID); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
	if err := store.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete() on unknown ID error = %v, want nil", err)
	}

	entries, err := store.List(ctx, knowledge.Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List() after delete returned %d entries, want 0", len(entries))
	}
}

func TestMemoryStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewMemoryStore()

	seed := []knowledge.Entry{
		{Title: "A", Content: "c", Category: "pricing", IsActive: true},
		{Title: "B", Content: "c", Category: "pricing", IsActive: false},
		{Title: "C", Content: "c", Category: "aftercare", IsActive: true},
	}
	for _, entry := range seed {
		if _, err := store.Add(ctx, entry); err != nil {
			t.Fatalf("Add(%s) error = %v", entry.Title, err)
		}
	}

	tests := []struct {
		name   string
		filter knowledge.Filter
		want   int
	}{
		{name: "no filter returns all", filter: knowledge.Filter{}, want: 3},
		{name: "category filter", filter: knowledge.Filter{Category: "pricing"}, want: 2},
		{name: "active filter", filter: knowledge.Filter{Active: boolPtr(true)}, want: 2},
		{name: "category and active", filter: knowledge.Filter{Category: "pricing", Active: boolPtr(true)}, want: 1},
		{name: "unknown category", filter: knowledge.Filter{Category: "nope"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(entries) != tt.want {
				t.Errorf("List() returned %d entries, want %d", len(entries), tt.want)
			}
		})
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewMemoryStore()

	base := time.Now().UTC()
	for i, title := range []string{"oldest", "middle", "newest"} {
		entry := knowledge.Entry{
			Title:     title,
			Content:   "c",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if _, err := store.Add(ctx, entry); err != nil {
			t.Fatalf("Add(%s) error = %v", title, err)
		}
	}

	entries, err := store.List(ctx, knowledge.Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	got := make([]string, len(entries))
	for i, entry := range entries {
		got[i] = entry.Title
	}
	want := []string{"newest", "middle", "oldest"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() order = %v, want %v", got, want)
		}
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := knowledge.NewID()
		if seen[id] {
			t.Fatalf("NewID() produced duplicate %q", id)
		}
		seen[id] = true
	}
}

func boolPtr(b bool) *bool { return &b }
