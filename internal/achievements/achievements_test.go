package achievements_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadet-portal/cadet-portal/internal/achievements"
	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/platform/upload"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type row struct {
	unit string
	a    achievements.Achievement
}

type memoryRepo struct {
	nextID  int64
	rows    map[int64]row
	failing bool
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{rows: map[int64]row{}} }

func (m *memoryRepo) ListByUnit(_ context.Context, unitID string) ([]achievements.Achievement, error) {
	out := []achievements.Achievement{}
	for _, r := range m.rows {
		if r.unit == unitID {
			out = append(out, r.a)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64, unitID string) (*achievements.Achievement, error) {
	r, ok := m.rows[id]
	if !ok || r.unit != unitID {
		return nil, shared.ErrNotFound
	}
	return &r.a, nil
}

func (m *memoryRepo) Create(_ context.Context, unitID string, in achievements.Input, imagePath string) (int64, error) {
	if m.failing {
		return 0, errors.New("insert failed")
	}
	m.nextID++
	a := achievements.Achievement{ID: m.nextID, Title: in.Title}
	if imagePath != "" {
		a.ImagePath = &imagePath
	}
	m.rows[m.nextID] = row{unit: unitID, a: a}
	return m.nextID, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64, unitID string) (bool, error) {
	r, ok := m.rows[id]
	if !ok || r.unit != unitID {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

type recordingNotifier struct {
	notices []notifications.Notice
}

func (r *recordingNotifier) NotifyUnitBestEffort(_ context.Context, _ string, n notifications.Notice) (int, error) {
	r.notices = append(r.notices, n)
	return 1, nil
}

var (
	adminU1 = shared.AdminPrincipal{ID: 1, UnitID: "U1"}
	adminU2 = shared.AdminPrincipal{ID: 2, UnitID: "U2"}
	cadetU1 = shared.CadetPrincipal{ID: 3, RegimentalNumber: "C-100", UnitID: "U1"}
)

type harness struct {
	dir      string
	repo     *memoryRepo
	notifier *recordingNotifier
	service  *achievements.Service
	router   http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	store, err := upload.NewStore(dir, 1<<20)
	require.NoError(t, err)
	h := &harness{dir: dir, repo: newMemoryRepo(), notifier: &recordingNotifier{}}
	h.service = achievements.NewService(h.repo, store, h.notifier, nil)
	r := chi.NewRouter()
	achievements.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), h.service, store).MountRoutes(r)
	h.router = r
	return h
}

func (h *harness) post(t *testing.T, p shared.Principal, title, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("description", "Inter-unit drill"))
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/admin", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCreateWithImageThenDelete(t *testing.T) {
	h := newHarness(t)

	rec := h.post(t, adminU1, "Best Drill", "drill photo.png", pngHeader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Msg string `json:"msg"`
		ID  int64  `json:"achievement_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.ID)

	files := h.files(t)
	require.Len(t, files, 1)
	assert.Equal(t, files[0], *h.repo.rows[1].a.ImagePath)
	assert.Equal(t, `New Achievement: "Best Drill". Check it out!`, h.notifier.notices[0].Message)
	assert.Equal(t, "/cadet/achievements", h.notifier.notices[0].Link)

	require.NoError(t, h.service.Delete(context.Background(), adminU1, 1))
	assert.Empty(t, h.files(t))
	assert.Equal(t, `Achievement removed: "Best Drill".`, h.notifier.notices[1].Message)
}

func TestCreateRejectsNonImage(t *testing.T) {
	h := newHarness(t)

	rec := h.post(t, adminU1, "Best Drill", "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"Only image files are allowed (jpeg, jpg, png, gif)."}`, rec.Body.String())
	assert.Empty(t, h.repo.rows)
	assert.Empty(t, h.notifier.notices)
}

func TestCreateWithoutImageOrTitle(t *testing.T) {
	h := newHarness(t)

	rec := h.post(t, adminU1, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"Title is required."}`, rec.Body.String())

	rec = h.post(t, adminU1, "Shooting Trophy", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, h.repo.rows[1].a.ImagePath)

	rec = h.post(t, cadetU1, "Shooting Trophy", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFailedInsertRemovesImage(t *testing.T) {
	h := newHarness(t)
	h.repo.failing = true

	rec := h.post(t, adminU1, "Best Drill", "drill.png", pngHeader)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"msg":"Database error while creating achievement."}`, rec.Body.String())
	assert.Empty(t, h.files(t))
}

func TestDeleteFromForeignUnit(t *testing.T) {
	h := newHarness(t)
	_, err := h.service.Create(context.Background(), adminU1, achievements.Input{Title: "Flag"}, nil)
	require.NoError(t, err)

	err = h.service.Delete(context.Background(), adminU2, 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Len(t, h.repo.rows, 1)
	assert.Len(t, h.notifier.notices, 1)

	list, err := h.service.ListForCadet(context.Background(), cadetU1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = h.service.ListForAdmin(context.Background(), cadetU1)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestStoredImageIsOnDisk(t *testing.T) {
	h := newHarness(t)
	rec := h.post(t, adminU1, "Best Drill", "a.png", pngHeader)
	require.Equal(t, http.StatusOK, rec.Code)
	name := *h.repo.rows[1].a.ImagePath
	_, err := os.Stat(filepath.Join(h.dir, name))
	assert.NoError(t, err)
}
