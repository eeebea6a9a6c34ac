package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/middleware"
)

const contextKeyUser = "auth_user"

// Gate answers who is signed in for the current request. It relies on the
// auth middleware having populated the request context.
type Gate struct{ svc *Service }

func NewGate(svc *Service) *Gate { return &Gate{svc: svc} }

func (g *Gate) IsLoggedIn(c *gin.Context) bool {
	return middleware.IsAuthenticated(c)
}

// CurrentUser loads the signed-in user once per request. It returns nil
// without error for guests.
func (g *Gate) CurrentUser(c *gin.Context) (*CurrentUser, error) {
	if v, ok := c.Get(contextKeyUser); ok {
		return v.(*CurrentUser), nil
	}
	id := middleware.CurrentUserID(c)
	if id == "" {
		return nil, nil
	}
	u, err := g.svc.User(c.Request.Context(), id)
	if err != nil || u == nil {
		return nil, err
	}
	cu := toCurrentUser(u)
	c.Set(contextKeyUser, cu)
	return cu, nil
}

// DisplayName falls back to the user id when the account cannot be loaded.
func (g *Gate) DisplayName(c *gin.Context) string {
	if u, err := g.CurrentUser(c); err == nil && u != nil {
		return u.DisplayName
	}
	return middleware.CurrentUserID(c)
}
