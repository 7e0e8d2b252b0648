// Package upload stores user-submitted images on local disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/cadet-portal/cadet-portal/internal/shared"
)

var (
	// ErrNotImage rejects anything that is not a jpeg, png or gif.
	ErrNotImage = shared.Invalid("Only image files are allowed (jpeg, jpg, png, gif).")
	// ErrNoFile reports that the multipart field was absent.
	ErrNoFile = shared.Invalid("No file uploaded")
	// ErrTooLarge rejects bodies over the configured limit.
	ErrTooLarge = shared.Invalid("File too large.")
)

var allowedExt = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
}

var allowedMIME = []string{"image/jpeg", "image/png", "image/gif"}

var whitespace = regexp.MustCompile(`\s+`)

// Store writes uploads below a single directory.
type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewStore ensures dir exists and returns a Store rooted there.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if dir == "" {
		return nil, errors.New("upload: directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &Store{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// FileName builds the stored name: unix millis, a dash, then the original
// base name with whitespace runs replaced by underscores.
func FileName(at time.Time, original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	base = whitespace.ReplaceAllString(base, "_")
	return fmt.Sprintf("%d-%s", at.UnixMilli(), base)
}

// ParseForm parses a multipart request within the size limit.
func (s *Store) ParseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+1<<20)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrTooLarge
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return ErrNoFile
		}
		return shared.Invalid("Malformed upload.")
	}
	return nil
}

// SaveField stores the single file submitted under field and returns its
// stored name. ParseForm must have been called.
func (s *Store) SaveField(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return "", ErrNoFile
	}
	return s.Save(r.MultipartForm.File[field][0])
}

// Save validates fh and copies it into the store.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	if _, ok := allowedExt[strings.ToLower(filepath.Ext(fh.Filename))]; !ok {
		return "", ErrNotImage
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("upload: open part: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("upload: detect type: %w", err)
	}
	if !mimetype.EqualsAny(mt.String(), allowedMIME...) {
		return "", ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("upload: rewind: %w", err)
	}

	name := FileName(s.now(), fh.Filename)
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("upload: create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("upload: write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("upload: close file: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(s.Path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path resolves a stored name to its location on disk.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Handler serves stored files under prefix without directory listings.
func (s *Store) Handler(prefix string) http.Handler {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(s.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
