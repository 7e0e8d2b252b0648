package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadet-portal/cadet-portal/internal/auth"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

func newTestRouter(t *testing.T, f *fixture, production bool) http.Handler {
	t.Helper()
	h := auth.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), f.service, auth.HandlerConfig{
		CookieName: "token",
		Production: production,
	})
	r := chi.NewRouter()
	r.Route("/auth", h.MountRoutes)
	r.Route("/api", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Route("/change-password", h.MountPasswordRoutes)
		r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			_, _ = io.WriteString(w, shared.Subject(p))
		})
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func tokenCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatal("token cookie not set")
	return nil
}

func TestLoginSetsHTTPOnlyCookie(t *testing.T) {
	f := newFixture(t)
	f.repo.admins["U1"] = &auth.Admin{ID: 1, UnitID: "U1", Designation: "ANO", PasswordHash: hash(t, "pw"), IsApproved: true}
	router := newTestRouter(t, f, false)

	rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{"identifier": "U1", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"redirect":"/admin"}`, rec.Body.String())

	c := tokenCookie(t, rec)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.NotEmpty(t, c.Value)

	rec = doJSON(t, router, http.MethodGet, "/api/whoami", nil, c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "U1", rec.Body.String())
}

func TestLoginCookieIsCrossSiteInProduction(t *testing.T) {
	f := newFixture(t)
	f.repo.masters["9000"] = &auth.Master{Phone: "9000", PasswordHash: hash(t, "pw"), IsActive: true}
	router := newTestRouter(t, f, true)

	rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{"identifier": "9000", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	c := tokenCookie(t, rec)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
}

func TestLoginErrorResponses(t *testing.T) {
	f := newFixture(t)
	f.repo.cadets["C-1"] = &auth.Cadet{RegimentalNumber: "C-1", UnitID: "U1", PasswordHash: hash(t, "pw")}
	router := newTestRouter(t, f, false)

	rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{"identifier": "C-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"Missing credentials."}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{"identifier": "C-1", "password": "nope"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"msg":"User account pending approval."}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{"identifier": "ghost", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"msg":"Invalid credentials."}`, rec.Body.String())
}

func TestAuthenticateRejectsUniformly(t *testing.T) {
	f := newFixture(t)
	f.repo.masters["9000"] = &auth.Master{Phone: "9000", PasswordHash: hash(t, "pw"), IsActive: true}
	router := newTestRouter(t, f, false)

	login := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{"identifier": "9000", "password": "pw"})
	c := tokenCookie(t, login)

	rec := doJSON(t, router, http.MethodPost, "/auth/logout", nil, c)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := tokenCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)

	missing := doJSON(t, router, http.MethodGet, "/api/whoami", nil)
	revoked := doJSON(t, router, http.MethodGet, "/api/whoami", nil, c)
	forged := doJSON(t, router, http.MethodGet, "/api/whoami", nil, &http.Cookie{Name: "token", Value: "abc.def.ghi"})

	for _, rec := range []*httptest.ResponseRecorder{missing, revoked, forged} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"msg":"Login required."}`, rec.Body.String())
	}
}

func TestValidateRoleReturnsClaims(t *testing.T) {
	f := newFixture(t)
	f.repo.cadets["C-1"] = &auth.Cadet{ID: 4, RegimentalNumber: "C-1", UnitID: "U1", PasswordHash: hash(t, "pw"), IsApproved: true}
	router := newTestRouter(t, f, false)

	c := tokenCookie(t, doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{"identifier": "C-1", "password": "pw"}))
	rec := doJSON(t, router, http.MethodGet, "/auth/validate-role", nil, c)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user", body.User["userType"])
	assert.Equal(t, "C-1", body.User["regimental_number"])
	assert.Equal(t, "U1", body.User["ano_id"])
}

func TestRegisterEndpoints(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(t, f, false)

	rec := doJSON(t, router, http.MethodPost, "/auth/register-user", map[string]string{"name": "A"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	payload := map[string]string{
		"regimental_number": "C-9", "name": "A", "email": "a@example.com", "password": "pw", "ano_id": "U1",
	}
	rec = doJSON(t, router, http.MethodPost, "/auth/register-user", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User registration successful.")

	rec = doJSON(t, router, http.MethodPost, "/auth/register-user", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"User already exists."}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/auth/register-admin", map[string]string{
		"anoId": "U1", "role": "ANO", "name": "B", "email": "b@example.com", "password": "pw", "type": "army",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pending approval"))

	rec = doJSON(t, router, http.MethodGet, "/auth/anos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestChangePasswordEndpoint(t *testing.T) {
	f := newFixture(t)
	f.repo.admins["U1"] = &auth.Admin{ID: 1, UnitID: "U1", PasswordHash: hash(t, "old"), IsApproved: true}
	router := newTestRouter(t, f, false)
	c := tokenCookie(t, doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{"identifier": "U1", "password": "old"}))

	rec := doJSON(t, router, http.MethodPost, "/api/change-password", map[string]string{
		"current_password": "wrong", "new_password": "new",
	}, c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Current password is incorrect."}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/change-password", map[string]string{
		"current_password": "old", "new_password": "new",
	}, c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}
