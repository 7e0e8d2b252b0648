package events

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository provides event persistence. Every operation is scoped to a unit.
type Repository interface {
	ListByUnit(ctx context.Context, unitID string) ([]Event, error)
	Get(ctx context.Context, id int64, unitID string) (*Event, error)
	Create(ctx context.Context, unitID string, in Input) (int64, error)
	Update(ctx context.Context, id int64, unitID string, in Input) (bool, error)
	Delete(ctx context.Context, id int64, unitID string) (bool, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs the repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const selectEvent = `SELECT event_id, event_date::text, fallin_time::text, dress_code, location, instructions, created_at
	FROM events`

// ListByUnit lists a unit's events, latest first.
func (r *PGRepository) ListByUnit(ctx context.Context, unitID string) ([]Event, error) {
	rows, err := r.db.Query(ctx, selectEvent+` WHERE ano_id = $1 ORDER BY event_date DESC, fallin_time DESC`, unitID)
	if err != nil {
		return nil, fmt.Errorf("events: list: %w", err)
	}
	defer rows.Close()
	list := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EventDate, &e.FallinTime, &e.DressCode, &e.Location, &e.Instructions, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Get loads an event owned by unitID.
func (r *PGRepository) Get(ctx context.Context, id int64, unitID string) (*Event, error) {
	var e Event
	err := r.db.QueryRow(ctx, selectEvent+` WHERE event_id = $1 AND ano_id = $2`, id, unitID).
		Scan(&e.ID, &e.EventDate, &e.FallinTime, &e.DressCode, &e.Location, &e.Instructions, &e.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("events: get: %w", err)
	}
	return &e, nil
}

// Create inserts an event and returns its id.
func (r *PGRepository) Create(ctx context.Context, unitID string, in Input) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO events (ano_id, event_date, fallin_time, dress_code, location, instructions)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING event_id`,
		unitID, in.EventDate, in.FallinTime, in.DressCode, in.Location, in.Instructions).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("events: create: %w", err)
	}
	return id, nil
}

// Update rewrites an event owned by unitID.
func (r *PGRepository) Update(ctx context.Context, id int64, unitID string, in Input) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE events
		SET event_date = $3, fallin_time = $4, dress_code = $5, location = $6, instructions = $7, updated_at = NOW()
		WHERE event_id = $1 AND ano_id = $2`,
		id, unitID, in.EventDate, in.FallinTime, in.DressCode, in.Location, in.Instructions)
	if err != nil {
		return false, fmt.Errorf("events: update: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes an event owned by unitID.
func (r *PGRepository) Delete(ctx context.Context, id int64, unitID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE event_id = $1 AND ano_id = $2`, id, unitID)
	if err != nil {
		return false, fmt.Errorf("events: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ Repository = (*PGRepository)(nil)
