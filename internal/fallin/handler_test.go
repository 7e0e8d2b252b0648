package fallin_test

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadet-portal/cadet-portal/internal/fallin"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

func serve(t *testing.T, svc *fallin.Service, p shared.Principal, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	fallin.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).MountRoutes(r)

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

func TestHandlerCreateScenario(t *testing.T) {
	repo, box := newMemoryRepo(), newInbox()
	box.units["U1"] = []string{"C-100", "C-101"}
	svc := newService(repo, box)

	rec := serve(t, svc, adminU1, http.MethodPost, "/", map[string]string{
		"date": "2024-01-10", "time": "08:00:00", "dress_code": "PT",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Msg      string `json:"msg"`
		FallinID int64  `json:"fallin_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Fallin created and notifications sent.", body.Msg)
	assert.Positive(t, body.FallinID)
	assert.Len(t, box.rows["C-100"], 1)
	assert.Len(t, box.rows["C-101"], 1)
}

func TestHandlerErrorShapes(t *testing.T) {
	repo, box := newMemoryRepo(), newInbox()
	svc := newService(repo, box)

	rec := serve(t, svc, adminU1, http.MethodPost, "/", map[string]string{"date": "2024-01-10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"Missing required fields: date, time, or dress_code."}`, rec.Body.String())

	rec = serve(t, svc, cadetU1, http.MethodPost, "/", parade())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"msg":"Only ANOs may create fallins."}`, rec.Body.String())

	rec = serve(t, svc, cadetU1, http.MethodGet, "/12", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, svc, adminU1, http.MethodDelete, "/12", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"msg":"You are not authorized to delete this fallin."}`, rec.Body.String())
}

func TestHandlerListForCadet(t *testing.T) {
	repo, box := newMemoryRepo(), newInbox()
	svc := newService(repo, box)
	_, err := svc.Create(context.Background(), adminU1, parade())
	require.NoError(t, err)

	rec := serve(t, svc, cadetU1, http.MethodGet, "/userfallin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "2024-01-10", list[0]["date"])
	assert.NotContains(t, list[0], "ano_id")
}
