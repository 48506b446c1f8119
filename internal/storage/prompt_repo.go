package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clinic-assistant/internal/prompt"
)

// PromptRepo is the SQLite-backed prompt.Store implementation.
type PromptRepo struct {
	db *sql.DB
}

// NewPromptRepo creates a new PromptRepo.
func NewPromptRepo(db *sql.DB) *PromptRepo {
	return &PromptRepo{db: db}
}

// Active returns the currently active prompt, falling back to the built-in
// default when none has been activated.
func (r *PromptRepo) Active(ctx context.Context) (prompt.Prompt, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, content, version, is_active, updated_at FROM prompts WHERE is_active = 1 ORDER BY updated_at DESC LIMIT 1",
	)
	p, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return prompt.DefaultActive(), nil
	}
	if err != nil {
		return prompt.Prompt{}, err
	}
	return p, nil
}

// Save inserts or updates a prompt inside a transaction. When p.IsActive is
// set, every other prompt is deactivated first so at most one row stays
// active.
func (r *PromptRepo) Save(ctx context.Context, p prompt.Prompt) (prompt.Prompt, error) {
	if p.ID == "" {
		p.ID = time.Now().UTC().Format("20060102150405.000000000")
	}
	if p.Version == 0 {
		p.Version = 1
	}
	p.UpdatedAt = time.Now().UTC()
	p.Source = "database"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return prompt.Prompt{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if p.IsActive {
		if _, err := tx.ExecContext(ctx, "UPDATE prompts SET is_active = 0 WHERE id != ?", p.ID); err != nil {
			return prompt.Prompt{}, fmt.Errorf("failed to deactivate prompts: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO prompts (id, name, content, version, is_active, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 name = excluded.name, content = excluded.content, version = excluded.version,
		 is_active = excluded.is_active, updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Content, p.Version, boolToInt(p.IsActive), p.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return prompt.Prompt{}, fmt.Errorf("failed to upsert prompt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return prompt.Prompt{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return p, nil
}

// List returns all saved prompts, newest first.
func (r *PromptRepo) List(ctx context.Context) ([]prompt.Prompt, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, content, version, is_active, updated_at FROM prompts ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	prompts := make([]prompt.Prompt, 0)
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prompts: %w", err)
	}

	return prompts, nil
}

func scanPrompt(row rowScanner) (prompt.Prompt, error) {
	var p prompt.Prompt
	var isActive int
	var updatedAt string

	err := row.Scan(&p.ID, &p.Name, &p.Content, &p.Version, &isActive, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return prompt.Prompt{}, err
	}
	if err != nil {
		return prompt.Prompt{}, fmt.Errorf("failed to scan prompt: %w", err)
	}

	p.IsActive = isActive != 0
	p.Source = "database"
	p.UpdatedAt, err = parseTimestamp(updatedAt)
	if err != nil {
		return prompt.Prompt{}, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return p, nil
}
