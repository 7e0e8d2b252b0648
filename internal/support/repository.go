package support

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository provides support query persistence.
type Repository interface {
	Create(ctx context.Context, regimentalNumber, message string) (int64, error)
	ListByCadet(ctx context.Context, regimentalNumber string) ([]Query, error)
	ListByUnit(ctx context.Context, unitID string) ([]Query, error)
	ListAll(ctx context.Context) ([]Query, error)
	Owner(ctx context.Context, id int64) (Owner, error)
	Reply(ctx context.Context, id int64, response string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs the repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const selectWithCadet = `SELECT sq.query_id, sq.regimental_number, u.name, sq.message, sq.response,
	sq.status, sq.created_at, sq.updated_at
	FROM support_queries sq
	JOIN users u ON sq.regimental_number = u.regimental_number`

// Create stores a new open query and returns its id.
func (r *PGRepository) Create(ctx context.Context, regimentalNumber, message string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO support_queries (regimental_number, message)
		VALUES ($1, $2) RETURNING query_id`, regimentalNumber, message).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("support: create: %w", err)
	}
	return id, nil
}

// ListByCadet returns a cadet's own queries, newest first.
func (r *PGRepository) ListByCadet(ctx context.Context, regimentalNumber string) ([]Query, error) {
	rows, err := r.db.Query(ctx, `SELECT query_id, message, response, status, created_at, updated_at
		FROM support_queries WHERE regimental_number = $1 ORDER BY created_at DESC`, regimentalNumber)
	if err != nil {
		return nil, fmt.Errorf("support: list cadet: %w", err)
	}
	defer rows.Close()
	list := []Query{}
	for rows.Next() {
		var q Query
		if err := rows.Scan(&q.ID, &q.Message, &q.Response, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

func (r *PGRepository) listWithCadet(ctx context.Context, query string, args ...any) ([]Query, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("support: list: %w", err)
	}
	defer rows.Close()
	list := []Query{}
	for rows.Next() {
		var q Query
		if err := rows.Scan(&q.ID, &q.RegimentalNumber, &q.CadetName, &q.Message, &q.Response,
			&q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// ListByUnit returns the queries of a unit's cadets, newest first.
func (r *PGRepository) ListByUnit(ctx context.Context, unitID string) ([]Query, error) {
	return r.listWithCadet(ctx, selectWithCadet+` WHERE u.ano_id = $1 ORDER BY sq.created_at DESC`, unitID)
}

// ListAll returns every query with its cadet's name, newest first.
func (r *PGRepository) ListAll(ctx context.Context) ([]Query, error) {
	return r.listWithCadet(ctx, selectWithCadet+` ORDER BY sq.created_at DESC`)
}

// Owner resolves the cadet and unit behind query id.
func (r *PGRepository) Owner(ctx context.Context, id int64) (Owner, error) {
	var o Owner
	err := r.db.QueryRow(ctx, `SELECT sq.regimental_number, u.ano_id
		FROM support_queries sq
		JOIN users u ON sq.regimental_number = u.regimental_number
		WHERE sq.query_id = $1`, id).Scan(&o.RegimentalNumber, &o.UnitID)
	if err != nil {
		if db.IsNoRows(err) {
			return Owner{}, shared.ErrNotFound
		}
		return Owner{}, fmt.Errorf("support: owner: %w", err)
	}
	return o, nil
}

// Reply stores the response and closes the query.
func (r *PGRepository) Reply(ctx context.Context, id int64, response string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE support_queries
		SET response = $2, status = 'Closed', updated_at = NOW() WHERE query_id = $1`, id, response)
	if err != nil {
		return false, fmt.Errorf("support: reply: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a query.
func (r *PGRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM support_queries WHERE query_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("support: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ Repository = (*PGRepository)(nil)
