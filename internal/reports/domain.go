// Package reports aggregates unit and platform statistics.
package reports

// UserCounts summarises a unit's cadets.
type UserCounts struct {
	TotalCadets   int64 `json:"totalCadets"`
	PendingCadets int64 `json:"pendingCadets"`
}

// FallinAttendance is the attendance outcome of one fall-in.
type FallinAttendance struct {
	FallinID      int64   `json:"fallin_id"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	AttendedCount int64   `json:"attendedCount"`
	TotalCadets   int64   `json:"totalCadets"`
	Percentage    float64 `json:"percentage"`
}

// Summary counts every entity on the platform.
type Summary struct {
	TotalCadets       int64 `json:"totalCadets"`
	TotalAdmins       int64 `json:"totalAdmins"`
	TotalMasters      int64 `json:"totalMasters"`
	TotalFallins      int64 `json:"totalFallins"`
	TotalEvents       int64 `json:"totalEvents"`
	TotalAchievements int64 `json:"totalAchievements"`
	TotalQueries      int64 `json:"totalQueries"`
}

// Trend is the platform-wide attendance of one fall-in. Percentage is nil
// when no attendance was recorded.
type Trend struct {
	FallinID     int64    `json:"fallin_id"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	PresentCount int64    `json:"presentCount"`
	TotalCount   int64    `json:"totalCount"`
	Percentage   *float64 `json:"percentage"`
}

// Account kinds searched by the global search.
const (
	KindCadet  = "user"
	KindAdmin  = "admin"
	KindMaster = "master"
)

// SearchHit is one account matched by the global search.
type SearchHit struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// SearchResult groups hits by account kind.
type SearchResult struct {
	Cadets  []SearchHit `json:"cadets"`
	Admins  []SearchHit `json:"admins"`
	Masters []SearchHit `json:"masters"`
}

const recentLimit = 5
