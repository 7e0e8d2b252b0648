package reports_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadet-portal/cadet-portal/internal/reports"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

var (
	master = shared.MasterPrincipal{Phone: "9000000000"}
	admin  = shared.AdminPrincipal{ID: 1, UnitID: "U1"}
	cadet  = shared.CadetPrincipal{ID: 7, RegimentalNumber: "R7", UnitID: "U1"}
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func serve(t *testing.T, repo reports.Repository, p shared.Principal, path string) *httptest.ResponseRecorder {
	t.Helper()
	h := reports.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), reports.NewService(repo))
	r := chi.NewRouter()
	r.Route("/admin/reports", h.MountAdminRoutes)
	r.Route("/master/system-reports", h.MountSystemRoutes)
	r.Route("/master/global-search", h.MountSearchRoutes)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(shared.ContextWithPrincipal(context.Background(), p))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminUserCountsScopedToUnit(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE ano_id = \$1`).
		WithArgs("U1").
		WillReturnRows(pgxmock.NewRows([]string{"total", "pending"}).AddRow(int64(12), int64(3)))

	rec := serve(t, reports.NewRepository(mock), admin, "/admin/reports/users")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalCadets":12,"pendingCadets":3}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminEventsCountAndAverage(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM fallin WHERE ano_id = \$1`).
		WithArgs("U1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))
	mock.ExpectQuery(`SELECT ROUND\(AVG\(pcnt\)`).
		WithArgs("U1").
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(nil))

	rec := serve(t, reports.NewRepository(mock), admin, "/admin/reports/events-count")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalEvents":4}`, rec.Body.String())

	rec = serve(t, reports.NewRepository(mock), admin, "/admin/reports/attendance-summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"avgAttendance":0}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminAttendanceDetails(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`WHERE f.ano_id = \$1 GROUP BY f.fallin_id`).
		WithArgs("U1", 5).
		WillReturnRows(pgxmock.NewRows([]string{"fallin_id", "date", "time", "attended", "total", "pct"}).
			AddRow(int64(9), "2026-01-10", "07:00:00", int64(2), int64(3), 66.67))

	rec := serve(t, reports.NewRepository(mock), admin, "/admin/reports/attendance-details")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"fallin_id":9,"date":"2026-01-10","time":"07:00:00","attendedCount":2,"totalCadets":3,"percentage":66.67}]`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminReportsRejectOtherRoles(t *testing.T) {
	mock := newMock(t)
	rec := serve(t, reports.NewRepository(mock), cadet, "/admin/reports/users")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"msg":"Only ANOs may view reports."}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSystemSummary(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT \(SELECT COUNT\(\*\) FROM users\)`).
		WithArgs().
		WillReturnRows(pgxmock.NewRows([]string{"a", "b", "c", "d", "e", "f", "g"}).
			AddRow(int64(10), int64(2), int64(1), int64(5), int64(3), int64(4), int64(6)))

	rec := serve(t, reports.NewRepository(mock), master, "/master/system-reports/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalCadets":10,"totalAdmins":2,"totalMasters":1,"totalFallins":5,
		"totalEvents":3,"totalAchievements":4,"totalQueries":6}`, rec.Body.String())

	rec = serve(t, reports.NewRepository(mock), admin, "/master/system-reports/summary")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"msg":"Only master may view system reports."}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceTrendsKeepsEmptyFallins(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`LEFT JOIN attendance a ON f.fallin_id = a.fallin_id`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"fallin_id", "date", "time", "present", "total", "pct"}).
			AddRow(int64(2), "2026-02-01", "06:30:00", int64(0), int64(0), nil))

	rec := serve(t, reports.NewRepository(mock), master, "/master/system-reports/attendance-trends")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"fallin_id":2,"date":"2026-02-01","time":"06:30:00","presentCount":0,"totalCount":0,"percentage":null}]`, rec.Body.String())

	rec = serve(t, reports.NewRepository(mock), cadet, "/master/system-reports/attendance-trends")
	assert.JSONEq(t, `{"msg":"Only master may view attendance trends."}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fakeRepo struct {
	reports.Repository
	hits map[string][]reports.SearchHit
	fail error
}

func (f *fakeRepo) Search(_ context.Context, kind, pattern string) ([]reports.SearchHit, error) {
	if f.fail != nil && kind == reports.KindAdmin {
		return nil, f.fail
	}
	return f.hits[kind], nil
}

func TestGlobalSearchGroupsByKind(t *testing.T) {
	repo := &fakeRepo{hits: map[string][]reports.SearchHit{
		reports.KindCadet:  {{Type: reports.KindCadet, ID: "R7", Name: "Asha", Email: "asha@x.in", Contact: "1"}},
		reports.KindAdmin:  {},
		reports.KindMaster: {},
	}}
	rec := serve(t, repo, master, "/master/global-search?q=ash")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cadets":[{"type":"user","id":"R7","name":"Asha","email":"asha@x.in","contact":"1"}],
		"admins":[],"masters":[]}`, rec.Body.String())
}

func TestGlobalSearchValidation(t *testing.T) {
	repo := &fakeRepo{}
	rec := serve(t, repo, master, "/master/global-search?q=%20")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"Query parameter q is required."}`, rec.Body.String())

	rec = serve(t, repo, admin, "/master/global-search?q=a")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"msg":"Only master may perform global search."}`, rec.Body.String())
}

func TestGlobalSearchEscapesWildcards(t *testing.T) {
	mock := newMock(t)
	mock.MatchExpectationsInOrder(false)
	for _, table := range []string{"users", "admins", "masters"} {
		mock.ExpectQuery(`FROM ` + table + ` WHERE`).
			WithArgs(`%50\%\_%`).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "contact"}))
	}
	res, err := reports.NewService(reports.NewRepository(mock)).Search(context.Background(), master, "50%_")
	require.NoError(t, err)
	assert.Empty(t, res.Cadets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGlobalSearchFailure(t *testing.T) {
	repo := &fakeRepo{fail: errors.New("db down")}
	rec := serve(t, repo, master, "/master/global-search?q=a")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"msg":"Server error"}`, rec.Body.String())
}
