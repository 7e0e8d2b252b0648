package upload_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadet-portal/cadet-portal/internal/platform/upload"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Best Drill"))
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFileNameSanitisesWhitespace(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "1700000000123-my_parade_photo.png", upload.FileName(at, "my parade \t photo.png"))
	assert.Equal(t, "1700000000123-evil.png", upload.FileName(at, "../../etc/evil.png"))
}

func TestSaveFieldStoresImage(t *testing.T) {
	dir := t.TempDir()
	store, err := upload.NewStore(dir, 1<<20)
	require.NoError(t, err)

	req := multipartRequest(t, "image", "drill photo.png", pngHeader)
	rec := httptest.NewRecorder()
	require.NoError(t, store.ParseForm(rec, req))

	name, err := store.SaveField(req, "image")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "-drill_photo.png"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, store.Remove(name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveFieldRejectsNonImages(t *testing.T) {
	store, err := upload.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	cases := map[string]struct {
		filename string
		content  []byte
	}{
		"wrong extension":  {"notes.txt", []byte("hello")},
		"spoofed contents": {"fake.png", []byte("plain text pretending to be a png")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := multipartRequest(t, "image", tc.filename, tc.content)
			require.NoError(t, store.ParseForm(httptest.NewRecorder(), req))
			_, err := store.SaveField(req, "image")
			assert.ErrorIs(t, err, upload.ErrNotImage)
		})
	}
}

func TestSaveFieldMissingFile(t *testing.T) {
	store, err := upload.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	req := multipartRequest(t, "", "", nil)
	require.NoError(t, store.ParseForm(httptest.NewRecorder(), req))
	_, err = store.SaveField(req, "profile_pic")
	assert.ErrorIs(t, err, upload.ErrNoFile)
	assert.Equal(t, "Best Drill", req.FormValue("title"))
}

func TestRemoveMissingFileIsNoop(t *testing.T) {
	store, err := upload.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	assert.NoError(t, store.Remove("1-gone.png"))
}
