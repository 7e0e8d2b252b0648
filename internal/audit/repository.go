package audit

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
)

// PGRepository reads and writes system_logs.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs the repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// Insert appends one log row.
func (r *PGRepository) Insert(ctx context.Context, e Entry) error {
	_, err := r.db.Exec(ctx, `INSERT INTO system_logs (user_type, user_id, action, ip_address) VALUES ($1, $2, $3, $4)`,
		e.UserType, e.UserID, e.Action, e.IPAddress)
	if err != nil {
		return fmt.Errorf("audit: insert log: %w", err)
	}
	return nil
}

// List returns rows newest first. Empty filter values match everything.
func (r *PGRepository) List(ctx context.Context, userType, action string, limit, offset int) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT log_id, user_type, user_id, action, ip_address, created_at
		FROM system_logs
		WHERE ($1 = '' OR user_type = $1) AND ($2 = '' OR action = $2)
		ORDER BY created_at DESC, log_id DESC
		LIMIT $3 OFFSET $4`, userType, action, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit: list logs: %w", err)
	}
	defer rows.Close()
	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserType, &e.UserID, &e.Action, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
