package chart

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/pkg/response"
)

type ShapeDTO struct {
	Rows [][]string `json:"rows" binding:"required"`
	Type string     `json:"type"`
}

type Handler struct{ fetcher *Fetcher }

func NewHandler(fetcher *Fetcher) *Handler { return &Handler{fetcher: fetcher} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/charts")
	g.GET("/data", h.data)
	g.POST("/shape", h.shape)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInsufficientData):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, ErrInvalidURL):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrFetch):
		response.BadGateway(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

// GET /charts/data?url=<sheet url>&type=bar
func (h *Handler) data(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("url"))
	if raw == "" {
		response.BadRequest(c, "url is required")
		return
	}
	rows, err := h.fetcher.Fetch(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := ClassifyAndShape(rows, c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, out)
}

// POST /charts/shape shapes rows supplied by the caller.
func (h *Handler) shape(c *gin.Context) {
	var dto ShapeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	out, err := ClassifyAndShape(dto.Rows, dto.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, out)
}
