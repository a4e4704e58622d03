package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/face-id/internal/identity"
)

// Repository provides PostgreSQL-backed identity storage.
type Repository struct {
	pool  *Pool
	model string
}

// NewRepository creates an identity repository. The model name is stored with
// every record so embeddings from different models are never mixed on load.
func NewRepository(pool *Pool, model string) *Repository {
	return &Repository{pool: pool, model: model}
}

// SaveIdentity persists a registered identity. A label collision maps to the
// same duplicate error the in-memory store reports.
func (r *Repository) SaveIdentity(ctx context.Context, rec identity.Record) error {
	query := `
		INSERT INTO identities (uid, label, embedding, dim, model, created_at)
		VALUES ($1, $2, $3::vector, $4, $5, $6)
	`

	vec := pgvector.NewVector(rec.Embedding)
	_, err := r.pool.Exec(ctx, query, rec.UID, rec.Label, vec, len(rec.Embedding), r.model, rec.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return &identity.DuplicateError{Label: rec.Label}
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

// LoadAll returns all identities stored for the repository's model, ordered
// by insertion so the store's tie-breaking survives a restart.
func (r *Repository) LoadAll(ctx context.Context) ([]identity.Record, error) {
	query := `
		SELECT uid, label, embedding, created_at
		FROM identities
		WHERE model = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, r.model)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var records []identity.Record
	for rows.Next() {
		var rec identity.Record
		var vec pgvector.Vector
		if err := rows.Scan(&rec.UID, &rec.Label, &vec, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		rec.Embedding = vec.Slice()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return records, nil
}

// DeleteIdentity removes an identity by label. Returns false when no row
// matched.
func (r *Repository) DeleteIdentity(ctx context.Context, label string) (bool, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM identities WHERE label = $1 AND model = $2", label, r.model)
	if err != nil {
		return false, fmt.Errorf("delete identity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete identity rows affected: %w", err)
	}
	return affected > 0, nil
}

// Count returns the number of identities stored for the repository's model.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities WHERE model = $1", r.model).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}
