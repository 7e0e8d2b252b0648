package reports

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Service exposes unit and platform reports.
type Service struct {
	repo Repository
}

// NewService constructs the service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var (
	errAdminOnly    = shared.Forbidden("Only ANOs may view reports.")
	errEmptySearch  = shared.Invalid("Query parameter q is required.")
	likeEscaper     = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	searchKindOrder = []string{KindCadet, KindAdmin, KindMaster}
)

func unitOf(p shared.Principal) (string, error) {
	a, ok := shared.AsAdmin(p)
	if !ok {
		return "", errAdminOnly
	}
	return a.UnitID, nil
}

// UserCounts reports total and pending cadets of the admin's unit.
func (s *Service) UserCounts(ctx context.Context, p shared.Principal) (UserCounts, error) {
	unit, err := unitOf(p)
	if err != nil {
		return UserCounts{}, err
	}
	return s.repo.UnitUserCounts(ctx, unit)
}

// FallinCount reports how many fall-ins the admin's unit scheduled.
func (s *Service) FallinCount(ctx context.Context, p shared.Principal) (int64, error) {
	unit, err := unitOf(p)
	if err != nil {
		return 0, err
	}
	return s.repo.UnitFallinCount(ctx, unit)
}

// AttendanceAverage reports the unit's mean per-fall-in attendance percentage.
func (s *Service) AttendanceAverage(ctx context.Context, p shared.Principal) (float64, error) {
	unit, err := unitOf(p)
	if err != nil {
		return 0, err
	}
	return s.repo.UnitAttendanceAverage(ctx, unit)
}

// AttendanceDetails reports the unit's most recent recorded fall-ins.
func (s *Service) AttendanceDetails(ctx context.Context, p shared.Principal) ([]FallinAttendance, error) {
	unit, err := unitOf(p)
	if err != nil {
		return nil, err
	}
	return s.repo.UnitRecentAttendance(ctx, unit, recentLimit)
}

// SystemSummary returns platform-wide counts to the master.
func (s *Service) SystemSummary(ctx context.Context, p shared.Principal) (Summary, error) {
	if _, ok := shared.AsMaster(p); !ok {
		return Summary{}, shared.Forbidden("Only master may view system reports.")
	}
	return s.repo.Summary(ctx)
}

// Snapshot returns platform-wide counts without an authorization check. It
// backs scheduled jobs.
func (s *Service) Snapshot(ctx context.Context) (Summary, error) {
	return s.repo.Summary(ctx)
}

// AttendanceTrends returns the latest fall-ins across units to the master.
func (s *Service) AttendanceTrends(ctx context.Context, p shared.Principal) ([]Trend, error) {
	if _, ok := shared.AsMaster(p); !ok {
		return nil, shared.Forbidden("Only master may view attendance trends.")
	}
	return s.repo.AttendanceTrends(ctx, recentLimit)
}

// Search matches q as a substring across cadets, admins and masters. The
// three lookups run concurrently.
func (s *Service) Search(ctx context.Context, p shared.Principal, q string) (SearchResult, error) {
	if _, ok := shared.AsMaster(p); !ok {
		return SearchResult{}, shared.Forbidden("Only master may perform global search.")
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return SearchResult{}, errEmptySearch
	}
	pattern := "%" + likeEscaper.Replace(q) + "%"

	hits := make([][]SearchHit, len(searchKindOrder))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range searchKindOrder {
		g.Go(func() error {
			found, err := s.repo.Search(gctx, kind, pattern)
			if err != nil {
				return err
			}
			hits[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Cadets: hits[0], Admins: hits[1], Masters: hits[2]}, nil
}
