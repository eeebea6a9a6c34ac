package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/middleware"
	"github.com/mx-space/landing/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestService(newMemRepository())
	_, err := svc.CreateUser(t.Context(), "ed", "pw", "Ed Itor", models.RoleOwner)
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api/v2", middleware.OptionalAuth(svc))
	NewHandler(svc, NewGate(svc)).RegisterRoutes(api, middleware.Auth(svc))
	return r, svc
}

func tokenCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func TestHandler_JSONLoginSessionLogout(t *testing.T) {
	r, _ := newAuthRouter(t)

	body, _ := json.Marshal(LoginDTO{Username: "ed", Password: "pw"})
	req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	cookie := tokenCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/api/v2/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var sess sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.False(t, sess.IsGuest)
	assert.Equal(t, "Ed Itor", sess.User.DisplayName)

	req = httptest.NewRequest(http.MethodPost, "/api/v2/auth/logout", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v2/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	sess = sessionResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.True(t, sess.IsGuest)
}

func TestHandler_JSONLoginRejected(t *testing.T) {
	r, _ := newAuthRouter(t)
	body, _ := json.Marshal(LoginDTO{Username: "ed", Password: "nope"})
	req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_FormLogin(t *testing.T) {
	r, _ := newAuthRouter(t)

	post := func(password, redirect string) *httptest.ResponseRecorder {
		form := url.Values{"username": {"ed"}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/login?redirect="+url.QueryEscape(redirect), strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post("pw", "/admin/sections?edit=sec_1")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/sections?edit=sec_1", w.Header().Get("Location"))
	assert.NotNil(t, tokenCookie(w))

	w = post("pw", "//evil.example")
	assert.Equal(t, "/admin/sections", w.Header().Get("Location"))

	w = post("bad", "/admin/sections")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, ErrInvalidCredentials.Error(), loc.Query().Get("notice"))
	assert.Nil(t, tokenCookie(w))
}

func TestHandler_Register(t *testing.T) {
	r, _ := newAuthRouter(t)
	body, _ := json.Marshal(RegisterDTO{Username: "another", Password: "secret1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/admin/sections?edit=x", SafeRedirect("/admin/sections?edit=x"))
	for _, bad := range []string{"", "https://evil.example", "//evil.example", "/\\evil.example"} {
		assert.Equal(t, defaultRedirect, SafeRedirect(bad), bad)
	}
}
