package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"cost_intelligence/pkg/core/forms"
)

// SubmissionRepo stores form submissions. Drafts and completed submissions
// share one table; the incomplete-save workflow is an upsert that overwrites
// the row in place and flips the status on completion.
type SubmissionRepo struct{}

// NewSubmissionRepo creates a new repository instance.
func NewSubmissionRepo() *SubmissionRepo {
	return &SubmissionRepo{}
}

// Schema assumption:
// CREATE TABLE IF NOT EXISTS form_submissions (
//   id TEXT PRIMARY KEY,
//   entity TEXT NOT NULL,
//   status TEXT NOT NULL,
//   payload JSONB NOT NULL,
//   updated_at TIMESTAMPTZ
// );

// Save upserts a submission by id.
func (r *SubmissionRepo) Save(ctx context.Context, sub *forms.Submission) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	query := `
		INSERT INTO form_submissions (id, entity, status, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			entity = EXCLUDED.entity,
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = pool.Exec(ctx, query, sub.ID, sub.Entity, sub.Status, payload, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}
	return nil
}

// Load retrieves a submission by id.
func (r *SubmissionRepo) Load(ctx context.Context, id string) (*forms.Submission, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT payload FROM form_submissions WHERE id = $1`

	var payload []byte
	err := pool.QueryRow(ctx, query, id).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no submission found for id %s", id)
		}
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}

	var sub forms.Submission
	if err := json.Unmarshal(payload, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submission: %w", err)
	}
	return &sub, nil
}

// ListDrafts returns draft submissions for one entity, newest first.
func (r *SubmissionRepo) ListDrafts(ctx context.Context, entity string) ([]*forms.Submission, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT payload FROM form_submissions
		WHERE entity = $1 AND status = $2
		ORDER BY updated_at DESC
	`
	rows, err := pool.Query(ctx, query, entity, forms.StatusDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var out []*forms.Submission
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan draft row: %w", err)
		}
		var sub forms.Submission
		if err := json.Unmarshal(payload, &sub); err != nil {
			return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
		}
		out = append(out, &sub)
	}
	return out, rows.Err()
}

// Delete removes a submission by id.
func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	_, err := pool.Exec(ctx, `DELETE FROM form_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}
