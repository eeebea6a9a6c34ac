package render

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/middleware"
	"github.com/mx-space/landing/internal/models"
	"github.com/mx-space/landing/internal/modules/content/section"
	"github.com/mx-space/landing/internal/pkg/response"
	"go.uber.org/zap"
)

// UserNamer resolves the display name of the signed-in editor.
type UserNamer interface {
	DisplayName(c *gin.Context) string
}

type Handler struct {
	store    *section.Store
	dispatch *Dispatcher
	title    string
	users    UserNamer
	logger   *zap.Logger
}

func NewHandler(store *section.Store, dispatch *Dispatcher, title string, users UserNamer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(title) == "" {
		title = "Landing"
	}
	return &Handler{store: store, dispatch: dispatch, title: title, users: users, logger: logger.Named("PageHandler")}
}

// RegisterRoutes mounts the HTML pages at the root of the router.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/", h.landing)
	rg.GET("/login", h.login)

	a := rg.Group("/admin", authMW)
	a.GET("/sections", h.admin)
	a.POST("/sections/:id/fields", h.submitFields)
}

// RegisterAPIRoutes mounts the HTML fragment endpoint under the API prefix.
func (h *Handler) RegisterAPIRoutes(rg *gin.RouterGroup) {
	rg.GET("/sections/:id/render", h.renderSection)
}

func (h *Handler) landing(c *gin.Context) {
	h.renderPage(c, PageView{Title: h.title})
}

func (h *Handler) admin(c *gin.Context) {
	user := middleware.CurrentUserID(c)
	if h.users != nil {
		user = h.users.DisplayName(c)
	}
	h.renderPage(c, PageView{
		Title:   h.title + " · Sections",
		Admin:   true,
		User:    user,
		Editing: c.Query("edit"),
		Notice:  c.Query("notice"),
	})
}

func (h *Handler) renderPage(c *gin.Context, page PageView) {
	entries, err := h.store.All(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	for _, e := range entries {
		if e.Kind == section.KindFixed {
			page.Entries = append(page.Entries, PageEntry{
				ID: e.Fixed.ID, Name: e.Fixed.Name, Anchor: e.Fixed.Anchor, Fixed: true, Visible: true,
			})
			continue
		}
		sec := e.Section
		if !sec.IsVisible && !page.Admin {
			continue
		}
		page.Entries = append(page.Entries, PageEntry{
			ID:      sec.ID,
			Name:    sec.Name,
			Visible: sec.IsVisible,
			HTML:    h.dispatch.Render(*sec, Options{Edit: page.Admin && page.Editing == sec.ID}),
		})
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.dispatch.RenderPage(c.Writer, page); err != nil {
		h.logger.Error("render page failed", zap.Error(err))
	}
}

func (h *Handler) login(c *gin.Context) {
	redirect := c.Query("redirect")
	if !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") {
		redirect = "/admin/sections"
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	err := h.dispatch.views.ExecuteTemplate(c.Writer, "login", gin.H{
		"Title":    h.title,
		"Redirect": redirect,
		"Notice":   c.Query("notice"),
	})
	if err != nil {
		h.logger.Error("render login failed", zap.Error(err))
	}
}

func (h *Handler) submitFields(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	sec, _, err := h.store.Get(ctx, id)
	if err != nil {
		section.RespondError(c, err)
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updates := 0
	err = h.dispatch.Apply(sec, c.Request.PostForm, func(patch models.Fields) error {
		updates++
		_, err := h.store.Update(ctx, id, patch)
		return err
	})
	back := "/admin/sections?edit=" + url.QueryEscape(id)
	switch {
	case errors.Is(err, ErrInvalidInput):
		c.Redirect(http.StatusSeeOther, back+"&notice="+url.QueryEscape(err.Error())+"#section-"+id)
		return
	case err != nil:
		section.RespondError(c, err)
		return
	}
	h.logger.Info("section fields submitted", zap.String("id", id), zap.Int("updates", updates))
	c.Redirect(http.StatusSeeOther, back+"#section-"+id)
}

func (h *Handler) renderSection(c *gin.Context) {
	sec, _, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		section.RespondError(c, err)
		return
	}
	authed := middleware.IsAuthenticated(c)
	if !sec.IsVisible && !authed {
		response.NotFound(c)
		return
	}
	edit := authed && parseBool([]string{c.Query("edit")})
	html := h.dispatch.Render(sec, Options{Edit: edit})
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, string(html))
}
