package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/middleware"
	"github.com/mx-space/landing/internal/pkg/response"
)

const defaultRedirect = "/admin/sections"

type Handler struct {
	svc  *Service
	gate *Gate
}

func NewHandler(svc *Service, gate *Gate) *Handler {
	return &Handler{svc: svc, gate: gate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/login", h.login)
	g.POST("/register", h.register)
	g.GET("/session", h.session)
	g.POST("/logout", authMW, h.logout)
}

// login accepts JSON for API clients and a urlencoded form from the sign-in
// page. Both set the token cookie; the form flow answers with a redirect.
func (h *Handler) login(c *gin.Context) {
	form := isFormPost(c)
	var dto LoginDTO
	if err := c.ShouldBind(&dto); err != nil {
		if form {
			h.backToLogin(c, "Enter a username and password")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	token, u, err := h.svc.Login(c.Request.Context(), dto.Username, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials) && form:
			h.backToLogin(c, err.Error())
		case errors.Is(err, ErrInvalidCredentials):
			response.UnauthorizedMsg(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}

	h.setTokenCookie(c, token, int(h.svc.SessionTTL().Seconds()))
	if form {
		c.Redirect(http.StatusSeeOther, SafeRedirect(c.Query("redirect")))
		return
	}
	response.OK(c, loginResponse{Token: token, User: toResponse(u)})
}

func (h *Handler) backToLogin(c *gin.Context, notice string) {
	q := url.Values{"notice": {notice}, "redirect": {SafeRedirect(c.Query("redirect"))}}
	c.Redirect(http.StatusSeeOther, "/login?"+q.Encode())
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Register(c.Request.Context(), &dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyRegistered):
			response.ForbiddenMsg(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, toResponse(u))
}

func (h *Handler) logout(c *gin.Context) {
	err := h.svc.Logout(c.Request.Context(), middleware.CurrentUserID(c), middleware.CurrentSessionID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	h.setTokenCookie(c, "", -1)
	if isFormPost(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	response.NoContent(c)
}

func (h *Handler) session(c *gin.Context) {
	u, err := h.gate.CurrentUser(c)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, sessionResponse{IsGuest: u == nil, User: u})
}

func (h *Handler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

func isFormPost(c *gin.Context) bool {
	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		return true
	}
	return false
}

// SafeRedirect keeps post-login redirects on this site.
func SafeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return defaultRedirect
	}
	return target
}
