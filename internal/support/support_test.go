package support_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/shared"
	"github.com/cadet-portal/cadet-portal/internal/support"
)

var (
	cadetU1 = shared.CadetPrincipal{ID: 10, RegimentalNumber: "C-100", UnitID: "U1"}
	cadetU2 = shared.CadetPrincipal{ID: 20, RegimentalNumber: "C-200", UnitID: "U2"}
	adminU1 = shared.AdminPrincipal{ID: 1, UnitID: "U1"}
	adminU2 = shared.AdminPrincipal{ID: 2, UnitID: "U2"}
	master  = shared.MasterPrincipal{Phone: "9000000000"}
)

type memoryRepo struct {
	nextID int64
	units  map[string]string
	rows   map[int64]*support.Query
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		units: map[string]string{"C-100": "U1", "C-200": "U2"},
		rows:  map[int64]*support.Query{},
	}
}

func (m *memoryRepo) Create(_ context.Context, number, message string) (int64, error) {
	m.nextID++
	m.rows[m.nextID] = &support.Query{ID: m.nextID, RegimentalNumber: number, Message: message, Status: support.StatusOpen}
	return m.nextID, nil
}

func (m *memoryRepo) filter(keep func(*support.Query) bool) []support.Query {
	list := []support.Query{}
	for id := int64(1); id <= m.nextID; id++ {
		if q, ok := m.rows[id]; ok && keep(q) {
			list = append(list, *q)
		}
	}
	return list
}

func (m *memoryRepo) ListByCadet(_ context.Context, number string) ([]support.Query, error) {
	return m.filter(func(q *support.Query) bool { return q.RegimentalNumber == number }), nil
}

func (m *memoryRepo) ListByUnit(_ context.Context, unitID string) ([]support.Query, error) {
	return m.filter(func(q *support.Query) bool { return m.units[q.RegimentalNumber] == unitID }), nil
}

func (m *memoryRepo) ListAll(context.Context) ([]support.Query, error) {
	return m.filter(func(*support.Query) bool { return true }), nil
}

func (m *memoryRepo) Owner(_ context.Context, id int64) (support.Owner, error) {
	q, ok := m.rows[id]
	if !ok {
		return support.Owner{}, shared.ErrNotFound
	}
	return support.Owner{RegimentalNumber: q.RegimentalNumber, UnitID: m.units[q.RegimentalNumber]}, nil
}

func (m *memoryRepo) Reply(_ context.Context, id int64, response string) (bool, error) {
	q, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	q.Response = &response
	q.Status = support.StatusClosed
	return true, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

type recordingNotifier struct {
	sent map[string][]notifications.Notice
}

func (n *recordingNotifier) NotifyCadet(_ context.Context, number string, notice notifications.Notice) error {
	n.sent[number] = append(n.sent[number], notice)
	return nil
}

func newFixture() (*support.Service, *memoryRepo, *recordingNotifier) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{sent: map[string][]notifications.Notice{}}
	return support.NewService(repo, notifier, nil), repo, notifier
}

func requireKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.ErrorIs(t, err, kind)
	got, ok := shared.UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, msg, got)
}

func TestSubmitTrimsAndRequiresMessage(t *testing.T) {
	svc, repo, _ := newFixture()
	ctx := context.Background()

	id, err := svc.Submit(ctx, cadetU1, "  my uniform is missing  ")
	require.NoError(t, err)
	assert.Equal(t, "my uniform is missing", repo.rows[id].Message)
	assert.Equal(t, support.StatusOpen, repo.rows[id].Status)

	_, err = svc.Submit(ctx, cadetU1, "   ")
	requireKind(t, err, shared.ErrValidation, "Message is required.")
	_, err = svc.Submit(ctx, adminU1, "hello")
	requireKind(t, err, shared.ErrForbidden, "Only cadets may submit support queries.")
}

func TestReplyClosesAndNotifies(t *testing.T) {
	svc, repo, notifier := newFixture()
	ctx := context.Background()
	id, err := svc.Submit(ctx, cadetU1, "question")
	require.NoError(t, err)

	require.NoError(t, svc.Reply(ctx, adminU1, id, " answered "))

	q := repo.rows[id]
	assert.Equal(t, support.StatusClosed, q.Status)
	require.NotNil(t, q.Response)
	assert.Equal(t, "answered", *q.Response)
	assert.Equal(t, []notifications.Notice{{
		Type:    notifications.TypeSupportQuery,
		Message: "Admin replied to your support query.",
		Link:    "/cadet/support-queries",
	}}, notifier.sent["C-100"])
}

func TestAdminScopeIsUnit(t *testing.T) {
	svc, repo, notifier := newFixture()
	ctx := context.Background()
	mine, err := svc.Submit(ctx, cadetU1, "from U1")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, cadetU2, "from U2")
	require.NoError(t, err)

	list, err := svc.ForUnit(ctx, adminU1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "from U1", list[0].Message)

	requireKind(t, svc.Reply(ctx, adminU2, mine, "no"), shared.ErrNotFound, "Query not found.")
	requireKind(t, svc.DeleteForUnit(ctx, adminU2, mine), shared.ErrNotFound, "Query not found.")
	requireKind(t, svc.Reply(ctx, adminU1, 99, "x"), shared.ErrNotFound, "Query not found.")
	assert.Nil(t, repo.rows[mine].Response)
	assert.Empty(t, notifier.sent)

	require.NoError(t, svc.DeleteForUnit(ctx, adminU1, mine))
	assert.NotContains(t, repo.rows, mine)
}

func TestMasterViewAndDeleteOnly(t *testing.T) {
	svc, repo, _ := newFixture()
	ctx := context.Background()
	id, err := svc.Submit(ctx, cadetU2, "q")
	require.NoError(t, err)

	all, err := svc.All(ctx, master)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	requireKind(t, svc.Reply(ctx, master, id, "x"), shared.ErrForbidden, "Only ANOs may reply to queries.")
	require.NoError(t, svc.Delete(ctx, master, id))
	assert.Empty(t, repo.rows)
	requireKind(t, svc.Delete(ctx, master, id), shared.ErrNotFound, "Query not found.")

	_, err = svc.All(ctx, adminU1)
	requireKind(t, err, shared.ErrForbidden, "Only master may view support queries.")
}

func serve(t *testing.T, svc *support.Service, p shared.Principal, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	h := support.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Route("/support-queries", h.MountRoutes)
	r.Route("/master/support-queries", h.MountMasterRoutes)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(shared.ContextWithPrincipal(context.Background(), p))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerFlow(t *testing.T) {
	svc, _, _ := newFixture()

	rec := serve(t, svc, cadetU1, http.MethodPost, "/support-queries", map[string]string{"message": "help"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"Query submitted successfully."}`, rec.Body.String())

	rec = serve(t, svc, adminU1, http.MethodPut, "/support-queries/admin/1", map[string]string{"response": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"Response text is required."}`, rec.Body.String())

	rec = serve(t, svc, adminU1, http.MethodPut, "/support-queries/admin/1", map[string]string{"response": "done"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"Response saved and notification sent."}`, rec.Body.String())

	rec = serve(t, svc, cadetU1, http.MethodGet, "/support-queries/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []support.Query
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Closed", list[0].Status)

	rec = serve(t, svc, master, http.MethodDelete, "/master/support-queries/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"Support query deleted."}`, rec.Body.String())
}

func TestRepositoryOwnerJoinsUnit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT sq.regimental_number, u.ano_id FROM support_queries sq JOIN users u`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"regimental_number", "ano_id"}).AddRow("C-100", "U1"))
	mock.ExpectQuery(`SELECT sq.regimental_number, u.ano_id`).
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows([]string{"regimental_number", "ano_id"}))
	mock.ExpectExec(`SET response = \$2, status = 'Closed'`).
		WithArgs(int64(7), "done").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := support.NewRepository(mock)
	owner, err := repo.Owner(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, support.Owner{RegimentalNumber: "C-100", UnitID: "U1"}, owner)

	_, err = repo.Owner(context.Background(), 8)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	ok, err := repo.Reply(context.Background(), 7, "done")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
