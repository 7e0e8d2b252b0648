package notifications

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
)

// PGRepository persists notifications and broadcasts in PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs the repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// UnitRecipients lists the regimental numbers of every cadet in unitID.
func (r *PGRepository) UnitRecipients(ctx context.Context, unitID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT regimental_number FROM users WHERE ano_id = $1 ORDER BY regimental_number`, unitID)
	if err != nil {
		return nil, fmt.Errorf("notifications: list recipients: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var reg string
		if err := rows.Scan(&reg); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// Insert stores one notification for regimentalNumber.
func (r *PGRepository) Insert(ctx context.Context, regimentalNumber string, n Notice) error {
	var link *string
	if n.Link != "" {
		link = &n.Link
	}
	_, err := r.db.Exec(ctx, `INSERT INTO notifications (regimental_number, type, message, link) VALUES ($1, $2, $3, $4)`,
		regimentalNumber, string(n.Type), n.Message, link)
	if err != nil {
		return fmt.Errorf("notifications: insert: %w", err)
	}
	return nil
}

// ListForCadet returns a cadet's inbox newest first.
func (r *PGRepository) ListForCadet(ctx context.Context, regimentalNumber string) ([]Notification, error) {
	rows, err := r.db.Query(ctx, `SELECT notification_id, type, message, link, is_read, created_at
		FROM notifications WHERE regimental_number = $1
		ORDER BY created_at DESC, notification_id DESC`, regimentalNumber)
	if err != nil {
		return nil, fmt.Errorf("notifications: list: %w", err)
	}
	defer rows.Close()
	list := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead flags one of the cadet's own notifications as read.
func (r *PGRepository) MarkRead(ctx context.Context, id int64, regimentalNumber string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE, updated_at = NOW()
		WHERE notification_id = $1 AND regimental_number = $2`, id, regimentalNumber)
	if err != nil {
		return false, fmt.Errorf("notifications: mark read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListBroadcasts returns the broadcast ledger newest first.
func (r *PGRepository) ListBroadcasts(ctx context.Context) ([]Broadcast, error) {
	rows, err := r.db.Query(ctx, `SELECT notification_id, sender_type, sender_id, target_type, target_id, message, created_at
		FROM notification ORDER BY created_at DESC, notification_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("notifications: list broadcasts: %w", err)
	}
	defer rows.Close()
	list := []Broadcast{}
	for rows.Next() {
		var b Broadcast
		if err := rows.Scan(&b.ID, &b.SenderType, &b.SenderID, &b.TargetType, &b.TargetID, &b.Message, &b.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// InsertBroadcast stores a ledger row and returns its id.
func (r *PGRepository) InsertBroadcast(ctx context.Context, b Broadcast) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO notification (sender_type, sender_id, target_type, target_id, message)
		VALUES ($1, $2, $3, $4, $5) RETURNING notification_id`,
		b.SenderType, b.SenderID, b.TargetType, b.TargetID, b.Message).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("notifications: insert broadcast: %w", err)
	}
	return id, nil
}

// DeleteBroadcast removes a ledger row.
func (r *PGRepository) DeleteBroadcast(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notification WHERE notification_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("notifications: delete broadcast: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
