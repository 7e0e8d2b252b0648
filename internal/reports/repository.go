package reports

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
)

// Repository runs the reporting queries.
type Repository interface {
	UnitUserCounts(ctx context.Context, unitID string) (UserCounts, error)
	UnitFallinCount(ctx context.Context, unitID string) (int64, error)
	UnitAttendanceAverage(ctx context.Context, unitID string) (float64, error)
	UnitRecentAttendance(ctx context.Context, unitID string, limit int) ([]FallinAttendance, error)
	Summary(ctx context.Context) (Summary, error)
	AttendanceTrends(ctx context.Context, limit int) ([]Trend, error)
	Search(ctx context.Context, kind, pattern string) ([]SearchHit, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs the repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// UnitUserCounts counts a unit's cadets and pending registrations.
func (r *PGRepository) UnitUserCounts(ctx context.Context, unitID string) (UserCounts, error) {
	var c UserCounts
	err := r.db.QueryRow(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_approved)
		FROM users WHERE ano_id = $1`, unitID).Scan(&c.TotalCadets, &c.PendingCadets)
	if err != nil {
		return UserCounts{}, fmt.Errorf("reports: user counts: %w", err)
	}
	return c, nil
}

// UnitFallinCount counts a unit's fall-ins.
func (r *PGRepository) UnitFallinCount(ctx context.Context, unitID string) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM fallin WHERE ano_id = $1`, unitID).Scan(&n); err != nil {
		return 0, fmt.Errorf("reports: fallin count: %w", err)
	}
	return n, nil
}

// UnitAttendanceAverage is the mean per-fall-in present percentage of a unit,
// rounded to two decimals. Zero when nothing was recorded.
func (r *PGRepository) UnitAttendanceAverage(ctx context.Context, unitID string) (float64, error) {
	var avg *float64
	err := r.db.QueryRow(ctx, `SELECT ROUND(AVG(pcnt)::numeric, 2)::float8 FROM (
			SELECT COUNT(*) FILTER (WHERE a.status = 'Present') * 100.0 / COUNT(*) AS pcnt
			FROM attendance a
			JOIN fallin f ON a.fallin_id = f.fallin_id
			WHERE f.ano_id = $1
			GROUP BY a.fallin_id
		) t`, unitID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("reports: attendance average: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// UnitRecentAttendance summarises the latest recorded fall-ins of a unit.
func (r *PGRepository) UnitRecentAttendance(ctx context.Context, unitID string, limit int) ([]FallinAttendance, error) {
	rows, err := r.db.Query(ctx, `SELECT f.fallin_id, f.date::text, f.time::text,
			COUNT(*) FILTER (WHERE a.status = 'Present'),
			COUNT(a.regimental_number),
			ROUND((COUNT(*) FILTER (WHERE a.status = 'Present') * 100.0 / COUNT(a.regimental_number))::numeric, 2)::float8
		FROM attendance a
		JOIN fallin f ON a.fallin_id = f.fallin_id
		WHERE f.ano_id = $1
		GROUP BY f.fallin_id
		ORDER BY f.date DESC, f.time DESC
		LIMIT $2`, unitID, limit)
	if err != nil {
		return nil, fmt.Errorf("reports: recent attendance: %w", err)
	}
	defer rows.Close()
	list := []FallinAttendance{}
	for rows.Next() {
		var a FallinAttendance
		if err := rows.Scan(&a.FallinID, &a.Date, &a.Time, &a.AttendedCount, &a.TotalCadets, &a.Percentage); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Summary counts every table the dashboard reports on.
func (r *PGRepository) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := r.db.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM admins),
		(SELECT COUNT(*) FROM masters),
		(SELECT COUNT(*) FROM fallin),
		(SELECT COUNT(*) FROM events),
		(SELECT COUNT(*) FROM achievements),
		(SELECT COUNT(*) FROM support_queries)`).Scan(
		&s.TotalCadets, &s.TotalAdmins, &s.TotalMasters, &s.TotalFallins,
		&s.TotalEvents, &s.TotalAchievements, &s.TotalQueries)
	if err != nil {
		return Summary{}, fmt.Errorf("reports: summary: %w", err)
	}
	return s, nil
}

// AttendanceTrends returns the latest fall-ins across all units.
func (r *PGRepository) AttendanceTrends(ctx context.Context, limit int) ([]Trend, error) {
	rows, err := r.db.Query(ctx, `SELECT f.fallin_id, f.date::text, f.time::text,
			COUNT(*) FILTER (WHERE a.status = 'Present'),
			COUNT(a.regimental_number),
			ROUND((COUNT(*) FILTER (WHERE a.status = 'Present') * 100.0 / NULLIF(COUNT(a.regimental_number), 0))::numeric, 2)::float8
		FROM fallin f
		LEFT JOIN attendance a ON f.fallin_id = a.fallin_id
		GROUP BY f.fallin_id
		ORDER BY f.date DESC, f.time DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("reports: attendance trends: %w", err)
	}
	defer rows.Close()
	list := []Trend{}
	for rows.Next() {
		var t Trend
		if err := rows.Scan(&t.FallinID, &t.Date, &t.Time, &t.PresentCount, &t.TotalCount, &t.Percentage); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

var searchQueries = map[string]string{
	KindCadet: `SELECT regimental_number, name, email, contact FROM users
		WHERE name ILIKE $1 OR email ILIKE $1 OR regimental_number ILIKE $1 ORDER BY name`,
	KindAdmin: `SELECT ano_id, name, email, contact FROM admins
		WHERE name ILIKE $1 OR email ILIKE $1 OR ano_id ILIKE $1 ORDER BY name`,
	KindMaster: `SELECT phone, name, email, phone FROM masters
		WHERE name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1 ORDER BY name`,
}

// Search matches pattern against the identity, name and email of one kind of
// account.
func (r *PGRepository) Search(ctx context.Context, kind, pattern string) ([]SearchHit, error) {
	query, ok := searchQueries[kind]
	if !ok {
		return nil, fmt.Errorf("reports: unknown search kind %q", kind)
	}
	rows, err := r.db.Query(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("reports: search %s: %w", kind, err)
	}
	defer rows.Close()
	hits := []SearchHit{}
	for rows.Next() {
		h := SearchHit{Type: kind}
		if err := rows.Scan(&h.ID, &h.Name, &h.Email, &h.Contact); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
