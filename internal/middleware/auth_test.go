package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
)

type staticValidator map[string]*jwt.Claims

func (v staticValidator) ValidateToken(_ context.Context, token string) (*jwt.Claims, error) {
	if c, ok := v[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func newAuthRouter(v TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	whoami := func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c)+"/"+CurrentSessionID(c))
	}
	r.GET("/open", OptionalAuth(v), whoami)
	r.GET("/closed", Auth(v), whoami)
	r.GET("/admin", AuthRedirect(v, "/login"), whoami)
	return r
}

func TestAuth(t *testing.T) {
	r := newAuthRouter(staticValidator{"good": {UserID: "u1", SessionID: "s1"}})

	cases := []struct {
		name   string
		path   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"guest open", "/open", func(*http.Request) {}, http.StatusOK, "/"},
		{"bearer", "/closed", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "u1/s1"},
		{"cookie", "/closed", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "good"}) }, http.StatusOK, "u1/s1"},
		{"query", "/closed?token=good", func(*http.Request) {}, http.StatusOK, "u1/s1"},
		{"bad token", "/closed", func(r *http.Request) { r.Header.Set("Authorization", "bad") }, http.StatusUnauthorized, ""},
		{"bad token optional", "/open", func(r *http.Request) { r.Header.Set("Authorization", "bad") }, http.StatusOK, "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestAuthRedirect(t *testing.T) {
	r := newAuthRouter(staticValidator{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?edit=sec_1", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?redirect=%2Fadmin%3Fedit%3Dsec_1", w.Header().Get("Location"))
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  Bearer abc "))
	assert.Equal(t, "abc", NormalizeToken("bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Empty(t, NormalizeToken("   "))
}
