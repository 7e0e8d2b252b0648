package settings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository provides platform_config persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context) ([]Entry, error)
	Create(ctx context.Context, in CreateInput) (int64, error)
	Update(ctx context.Context, id int64, in UpdateInput) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Upsert(ctx context.Context, e Entry) error
}

// Pool is a connection pool able to open transactions.
type Pool interface {
	db.DBTX
	db.TxStarter
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db   db.DBTX
	pool db.TxStarter
}

// NewRepository constructs the repository.
func NewRepository(pool Pool) *PGRepository {
	return &PGRepository{db: pool, pool: pool}
}

// WithTx runs fn against a repository bound to one transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &PGRepository{db: tx, pool: r.pool})
	})
}

// List returns every entry ordered by key.
func (r *PGRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT config_id, cfg_key, cfg_value, description, updated_at
		FROM platform_config ORDER BY cfg_key ASC`)
	if err != nil {
		return nil, fmt.Errorf("settings: list: %w", err)
	}
	defer rows.Close()
	list := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Key, &e.Value, &e.Description, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Create inserts a new key. A taken key is reported as a duplicate.
func (r *PGRepository) Create(ctx context.Context, in CreateInput) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO platform_config (cfg_key, cfg_value, description)
		VALUES ($1, $2, $3) RETURNING config_id`, in.Key, in.Value, db.Nullable(in.Description)).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, shared.Duplicate("cfg_key already exists.")
		}
		return 0, fmt.Errorf("settings: create: %w", err)
	}
	return id, nil
}

// Update rewrites the value and description of entry id.
func (r *PGRepository) Update(ctx context.Context, id int64, in UpdateInput) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE platform_config
		SET cfg_value = $2, description = $3, updated_at = NOW() WHERE config_id = $1`,
		id, in.Value, db.Nullable(in.Description))
	if err != nil {
		return false, fmt.Errorf("settings: update: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes entry id.
func (r *PGRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM platform_config WHERE config_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("settings: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Upsert writes e by key, keeping the existing id when the key is present.
func (r *PGRepository) Upsert(ctx context.Context, e Entry) error {
	_, err := r.db.Exec(ctx, `INSERT INTO platform_config (cfg_key, cfg_value, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (cfg_key) DO UPDATE SET cfg_value = EXCLUDED.cfg_value,
			description = EXCLUDED.description, updated_at = NOW()`,
		e.Key, e.Value, e.Description)
	if err != nil {
		return fmt.Errorf("settings: upsert %s: %w", e.Key, err)
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
