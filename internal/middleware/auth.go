package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/pkg/jwt"
	"github.com/mx-space/landing/internal/pkg/response"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeySID    = "session_id"
	// TokenCookie carries the session token for the server-rendered admin pages.
	TokenCookie = "landing_token"
)

var ErrNoToken = errors.New("token is required")

// TokenValidator resolves a raw token into the claims of an active session.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// Auth returns a middleware that rejects requests without a valid session token.
func Auth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, v) {
			response.Unauthorized(c)
			return
		}
		c.Next()
	}
}

// AuthRedirect is Auth for HTML pages: guests are sent to loginPath with a
// redirect parameter pointing back at the requested page.
func AuthRedirect(v TokenValidator, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, v) {
			target := loginPath + "?redirect=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the user ID if a valid token is present, but does not block the request.
func OptionalAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, v)
		c.Next()
	}
}

func authenticate(c *gin.Context, v TokenValidator) bool {
	if IsAuthenticated(c) {
		return true
	}
	token := extractToken(c)
	if token == "" || v == nil {
		return false
	}
	claims, err := v.ValidateToken(c.Request.Context(), token)
	if err != nil || claims.UserID == "" {
		return false
	}
	c.Set(ContextKeyUserID, claims.UserID)
	if claims.SessionID != "" {
		c.Set(ContextKeySID, claims.SessionID)
	}
	return true
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentSessionID extracts the authenticated session ID from context.
func CurrentSessionID(c *gin.Context) string {
	v, _ := c.Get(ContextKeySID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context) string {
	if auth := NormalizeToken(c.GetHeader("Authorization")); auth != "" {
		return auth
	}
	if raw, err := c.Cookie(TokenCookie); err == nil {
		if token := NormalizeToken(raw); token != "" {
			return token
		}
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
