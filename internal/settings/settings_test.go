package settings_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadet-portal/cadet-portal/internal/settings"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

var (
	master = shared.MasterPrincipal{Phone: "9000000000"}
	admin  = shared.AdminPrincipal{ID: 1, UnitID: "U1"}
)

func newService(t *testing.T) (*settings.Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return settings.NewService(settings.NewRepository(mock), nil), mock
}

func serve(t *testing.T, svc *settings.Service, p shared.Principal, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	settings.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).MountRoutes(r)
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

func TestCreateConfig(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery(`INSERT INTO platform_config \(cfg_key, cfg_value, description\)`).
		WithArgs("site_name", "Cadet Portal", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"config_id"}).AddRow(int64(1)))

	rec := serve(t, svc, master, http.MethodPost, "/", map[string]string{"cfg_key": "site_name", "cfg_value": "Cadet Portal"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"Configuration created."}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateKey(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery(`INSERT INTO platform_config`).
		WithArgs("site_name", "x", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	rec := serve(t, svc, master, http.MethodPost, "/", map[string]string{"cfg_key": "site_name", "cfg_value": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"cfg_key already exists."}`, rec.Body.String())
}

func TestCreateValidationAndRole(t *testing.T) {
	svc, mock := newService(t)

	rec := serve(t, svc, master, http.MethodPost, "/", map[string]string{"cfg_key": "site_name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"cfg_key and cfg_value are required."}`, rec.Body.String())

	rec = serve(t, svc, admin, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"msg":"Only master may view platform configuration."}`, rec.Body.String())

	rec = serve(t, svc, master, http.MethodPut, "/3", map[string]string{"description": "only"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"cfg_value is required."}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectExec(`UPDATE platform_config SET cfg_value = \$2, description = \$3`).
		WithArgs(int64(3), "v", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM platform_config WHERE config_id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	rec := serve(t, svc, master, http.MethodPut, "/3", map[string]string{"cfg_value": "v"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"msg":"Configuration not found."}`, rec.Body.String())

	rec = serve(t, svc, master, http.MethodDelete, "/3", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRunsInOneTransaction(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectExec(`ON CONFLICT \(cfg_key\) DO UPDATE`).
		WithArgs("a", "1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`ON CONFLICT \(cfg_key\) DO UPDATE`).
		WithArgs("b", "2", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := svc.Import(context.Background(), []settings.Entry{{Key: "a", Value: "1"}, {Key: ""}, {Key: "b", Value: "2"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRollsBackOnFailure(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectExec(`INSERT INTO platform_config`).
		WithArgs("a", "1", pgxmock.AnyArg()).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := svc.Import(context.Background(), []settings.Entry{{Key: "a", Value: "1"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
