package backup

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/modules/content/section"
	"github.com/mx-space/landing/internal/pkg/response"
)

const maxUploadBytes = 10 << 20

type RestoreDTO struct {
	Name string `json:"name" form:"name"`
}

type restoreResponse struct {
	Sections int `json:"sections"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/backups", authMW)
	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/restore", h.restore)
	g.GET("/:name", h.download)
	g.DELETE("/:name", h.delete)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFoundMsg(c, err.Error())
	case errors.Is(err, ErrInvalidName):
		response.BadRequest(c, err.Error())
	default:
		section.RespondError(c, err)
	}
}

// GET /backups
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, items)
}

// POST /backups
func (h *Handler) create(c *gin.Context) {
	item, err := h.svc.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, item)
}

// GET /backups/:name
func (h *Handler) download(c *gin.Context) {
	name := c.Param("name")
	data, err := h.svc.Read(name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/json", data)
}

// DELETE /backups/:name
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// POST /backups/restore restores either a stored snapshot named in the body
// or a snapshot uploaded as the multipart "file" field.
func (h *Handler) restore(c *gin.Context) {
	ctx := c.Request.Context()

	if file, err := c.FormFile("file"); err == nil {
		if file.Size > maxUploadBytes {
			response.BadRequest(c, "backup file too large")
			return
		}
		src, err := file.Open()
		if err != nil {
			response.InternalError(c, err)
			return
		}
		defer src.Close()
		blob, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
		if err != nil {
			response.InternalError(c, err)
			return
		}
		n, err := h.svc.RestoreBlob(ctx, blob)
		if err != nil {
			respondError(c, err)
			return
		}
		response.OK(c, restoreResponse{Sections: n})
		return
	}

	var dto RestoreDTO
	if err := c.ShouldBind(&dto); err != nil || dto.Name == "" {
		response.BadRequest(c, "name or file is required")
		return
	}
	n, err := h.svc.Restore(ctx, dto.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, restoreResponse{Sections: n})
}
