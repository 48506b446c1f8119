package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinic-assistant/internal/knowledge"
)

// KnowledgeRepo is the SQLite-backed knowledge.Store implementation.
type KnowledgeRepo struct {
	db *sql.DB
}

// NewKnowledgeRepo creates a new KnowledgeRepo.
func NewKnowledgeRepo(db *sql.DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

// Add inserts an entry, assigning an ID and timestamps when absent.
func (r *KnowledgeRepo) Add(ctx context.Context, entry knowledge.Entry) (knowledge.Entry, error) {
	now := time.Now().UTC()
	if entry.ID == "" {
		entry.ID = knowledge.NewID()
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

	tags, err := json.Marshal(entry.Tags)
	if err != nil {
		return knowledge.Entry{}, fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO knowledge_entries (id, category, title, content, tags, is_active, source, file_name, origin_file_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 category = excluded.category, title = excluded.title, content = excluded.content,
		 tags = excluded.tags, is_active = excluded.is_active, source = excluded.source,
		 file_name = excluded.file_name, origin_file_id = excluded.origin_file_id,
		 updated_at = excluded.updated_at`,
		entry.ID, entry.Category, entry.Title, entry.Content, string(tags),
		boolToInt(entry.IsActive), entry.Source, entry.FileName, entry.OriginFileID,
		entry.CreatedAt.Format(time.RFC3339Nano), entry.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return knowledge.Entry{}, fmt.Errorf("failed to insert knowledge entry: %w", err)
	}

	return entry, nil
}

// Update merges the patch into the entry with the given ID.
// Returns knowledge.ErrNotFound when no such entry exists.
func (r *KnowledgeRepo) Update(ctx context.Context, id string, patch knowledge.Patch) (knowledge.Entry, error) {
	entry, err := r.get(ctx, id)
	if err != nil {
		return knowledge.Entry{}, err
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

	tags, err := json.Marshal(entry.Tags)
	if err != nil {
		return knowledge.Entry{}, fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE knowledge_entries SET category = ?, title = ?, content = ?, tags = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		entry.Category, entry.Title, entry.Content, string(tags),
		boolToInt(entry.IsActive), entry.UpdatedAt.Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return knowledge.Entry{}, fmt.Errorf("failed to update knowledge entry: %w", err)
	}

	return entry, nil
}

// Delete removes the entry with the given ID. Deleting a missing ID is a
// no-op, not an error.
func (r *KnowledgeRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM knowledge_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete knowledge entry: %w", err)
	}
	return nil
}

// List returns entries matching the filter, newest first.
func (r *KnowledgeRepo) List(ctx context.Context, filter knowledge.Filter) ([]knowledge.Entry, error) {
	query := "SELECT id, category, title, content, tags, is_active, source, file_name, origin_file_id, created_at, updated_at FROM knowledge_entries"
	var conditions []string
	var args []any

	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Active != nil {
		conditions = append(conditions, "is_active = ?")
		args = append(args, boolToInt(*filter.Active))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge entries: %w", err)
	}
	defer rows.Close()

	entries := make([]knowledge.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate knowledge entries: %w", err)
	}

	return entries, nil
}

func (r *KnowledgeRepo) get(ctx context.Context, id string) (knowledge.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, category, title, content, tags, is_active, source, file_name, origin_file_id, created_at, updated_at FROM knowledge_entries WHERE id = ?",
		id,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return knowledge.Entry{}, knowledge.ErrNotFound
	}
	return entry, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (knowledge.Entry, error) {
	var entry knowledge.Entry
	var tagsJSON string
	var isActive int
	var fileName, originFileID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&entry.ID, &entry.Category, &entry.Title, &entry.Content,
		&tagsJSON, &isActive, &entry.Source, &fileName, &originFileID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return knowledge.Entry{}, err
	}
	if err != nil {
		return knowledge.Entry{}, fmt.Errorf("failed to scan knowledge entry: %w", err)
	}

	if err := json.Unmarshal([]byte(tagsJSON), &entry.Tags); err != nil {
		return knowledge.Entry{}, fmt.Errorf("failed to decode tags: %w", err)
	}
	entry.IsActive = isActive != 0
	entry.FileName = fileName.String
	entry.OriginFileID = originFileID.String

	entry.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return knowledge.Entry{}, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	entry.UpdatedAt, err = parseTimestamp(updatedAt)
	if err != nil {
		return knowledge.Entry{}, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return entry, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// Fall back to the format SQLite emits for CURRENT_TIMESTAMP
		return time.Parse("2006-01-02 15:04:05", s)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
