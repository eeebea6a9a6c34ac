package section

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/middleware"
	"github.com/mx-space/landing/internal/models"
	"github.com/mx-space/landing/internal/pkg/response"
	"go.uber.org/zap"
)

type CreateSectionDTO struct {
	Layout string `json:"layout" binding:"required"`
	Name   string `json:"name"   binding:"required"`
}

type RenameDTO struct {
	Name string `json:"name" binding:"required"`
}

type ReorderDTO struct {
	IDs []string `json:"ids" binding:"required"`
}

type MoveDTO struct {
	To *int `json:"to" binding:"required"`
}

type sectionResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Layout    models.Layout         `json:"layout"`
	IsVisible bool                  `json:"isVisible"`
	Position  int                   `json:"position"`
	Fields    models.Fields         `json:"fields"`
	Styling   models.SectionStyling `json:"styling"`
	Created   time.Time             `json:"created"`
	Modified  time.Time             `json:"modified"`
}

type entryResponse struct {
	Kind     EntryKind        `json:"kind"`
	Position int              `json:"position"`
	Fixed    *FixedSection    `json:"fixed,omitempty"`
	Section  *sectionResponse `json:"section,omitempty"`
}

func toResponse(s *models.Section, position int) sectionResponse {
	fields := s.Fields
	if fields == nil {
		fields = models.Fields{}
	}
	return sectionResponse{
		ID: s.ID, Name: s.Name, Layout: s.Layout, IsVisible: s.IsVisible,
		Position: position, Fields: fields, Styling: s.Styling,
		Created: s.CreatedAt, Modified: s.UpdatedAt,
	}
}

type Handler struct {
	store   *Store
	factory *Factory
	logger  *zap.Logger
}

func NewHandler(store *Store, factory *Factory, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, factory: factory, logger: logger.Named("SectionHandler")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/sections")
	g.GET("", h.list)
	g.GET("/templates", h.templates)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PATCH("/reorder", h.reorder)
	a.PATCH("/:id/fields", h.updateFields)
	a.PUT("/:id/styling", h.updateStyling)
	a.PATCH("/:id/name", h.rename)
	a.POST("/:id/visibility", h.toggleVisibility)
	a.PATCH("/:id/move", h.move)
	a.DELETE("/:id", h.delete)
}

// RespondError maps store errors onto the response envelope.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFoundMsg(c, err.Error())
	case errors.Is(err, ErrInvalidOrder):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, ErrValidation):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

func (h *Handler) list(c *gin.Context) {
	entries, err := h.store.All(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	authed := middleware.IsAuthenticated(c)
	items := make([]entryResponse, 0, len(entries))
	// Entry positions span fixed and dynamic blocks; a section's own position
	// is its dynamic index, the one accepted by move and reorder.
	dynamic := -1
	for _, e := range entries {
		if e.Kind == KindDynamic {
			dynamic++
		}
		if e.Kind == KindDynamic && !e.Section.IsVisible && !authed {
			continue
		}
		item := entryResponse{Kind: e.Kind, Position: e.Position, Fixed: e.Fixed}
		if e.Section != nil {
			r := toResponse(e.Section, dynamic)
			item.Section = &r
		}
		items = append(items, item)
	}
	response.OK(c, items)
}

func (h *Handler) templates(c *gin.Context) {
	response.OK(c, ListTemplates())
}

func (h *Handler) get(c *gin.Context) {
	sec, pos, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	if !sec.IsVisible && !middleware.IsAuthenticated(c) {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(&sec, pos))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSectionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	layout, ok := models.ParseLayout(dto.Layout)
	if !ok {
		response.BadRequest(c, "unknown layout: "+dto.Layout)
		return
	}
	sec, err := h.factory.NewFromLayout(layout, dto.Name)
	if err != nil {
		RespondError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.store.Add(ctx, sec); err != nil {
		RespondError(c, err)
		return
	}
	saved, pos, err := h.store.Get(ctx, sec.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	h.logger.Info("section created",
		zap.String("id", saved.ID), zap.String("layout", string(saved.Layout)),
		zap.String("by", middleware.CurrentUserID(c)))
	response.Created(c, toResponse(&saved, pos))
}

func (h *Handler) updateFields(c *gin.Context) {
	var patch models.Fields
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.respondUpdated(c, func() (models.Section, error) {
		return h.store.Update(c.Request.Context(), c.Param("id"), patch)
	})
}

func (h *Handler) updateStyling(c *gin.Context) {
	var styling models.SectionStyling
	if err := c.ShouldBindJSON(&styling); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.respondUpdated(c, func() (models.Section, error) {
		return h.store.UpdateStyling(c.Request.Context(), c.Param("id"), styling)
	})
}

func (h *Handler) rename(c *gin.Context) {
	var dto RenameDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.respondUpdated(c, func() (models.Section, error) {
		return h.store.Rename(c.Request.Context(), c.Param("id"), dto.Name)
	})
}

func (h *Handler) toggleVisibility(c *gin.Context) {
	h.respondUpdated(c, func() (models.Section, error) {
		return h.store.ToggleVisibility(c.Request.Context(), c.Param("id"))
	})
}

func (h *Handler) respondUpdated(c *gin.Context, fn func() (models.Section, error)) {
	sec, err := fn()
	if err != nil {
		RespondError(c, err)
		return
	}
	_, pos, err := h.store.Get(c.Request.Context(), sec.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	response.OK(c, toResponse(&sec, pos))
}

func (h *Handler) reorder(c *gin.Context) {
	var dto ReorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.store.Reorder(c.Request.Context(), dto.IDs); err != nil {
		RespondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) move(c *gin.Context) {
	var dto MoveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.store.Move(c.Request.Context(), c.Param("id"), *dto.To); err != nil {
		RespondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	h.logger.Info("section deleted", zap.String("id", c.Param("id")), zap.String("by", middleware.CurrentUserID(c)))
	response.NoContent(c)
}
