package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/pkg/response"
)

// Probe reports whether one dependency is reachable.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
	// Optional probes mark the service degraded without failing it.
	Optional bool
}

type probeResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type report struct {
	Status string                 `json:"status"`
	Checks map[string]probeResult `json:"checks"`
}

type logItem struct {
	Size     string `json:"size"`
	Filename string `json:"filename"`
	Created  int64  `json:"created"`
}

// Handler serves liveness and log-file endpoints.
type Handler struct {
	probes  []Probe
	logDir  string
	timeout time.Duration
}

func NewHandler(logDir string, probes ...Probe) *Handler {
	return &Handler{probes: probes, logDir: logDir, timeout: 3 * time.Second}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/health", h.health)

	logGroup := rg.Group("/health/log", authMW)
	logGroup.GET("/list", h.listLogs)
	logGroup.GET("", h.readLog)
	logGroup.DELETE("", h.deleteLog)
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	out := report{Status: "ok", Checks: make(map[string]probeResult, len(h.probes))}
	code := http.StatusOK
	for _, p := range h.probes {
		if err := p.Check(ctx); err != nil {
			out.Checks[p.Name] = probeResult{OK: false, Message: err.Error()}
			if p.Optional {
				if out.Status == "ok" {
					out.Status = "degraded"
				}
				continue
			}
			out.Status = "down"
			code = http.StatusServiceUnavailable
			continue
		}
		out.Checks[p.Name] = probeResult{OK: true}
	}
	c.JSON(code, out)
}

func (h *Handler) listLogs(c *gin.Context) {
	entries, err := os.ReadDir(h.logDir)
	if err != nil {
		if os.IsNotExist(err) {
			response.OK(c, []logItem{})
			return
		}
		response.InternalError(c, err)
		return
	}
	items := make([]logItem, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, logItem{
			Size:     formatByteSize(info.Size()),
			Filename: entry.Name(),
			Created:  info.ModTime().UnixMilli(),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Created > items[j].Created
	})
	response.OK(c, items)
}

func (h *Handler) readLog(c *gin.Context) {
	path, ok := h.logPath(c)
	if !ok {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		response.NotFoundMsg(c, "log file not found")
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

func (h *Handler) deleteLog(c *gin.Context) {
	path, ok := h.logPath(c)
	if !ok {
		return
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			response.NotFoundMsg(c, "log file not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) logPath(c *gin.Context) (string, bool) {
	filename := filepath.Base(strings.TrimSpace(c.Query("filename")))
	if filename == "" || filename == "." || filename == string(filepath.Separator) || !strings.HasSuffix(filename, ".log") {
		response.UnprocessableEntity(c, "filename must name a .log file")
		return "", false
	}
	return filepath.Join(h.logDir, filename), true
}

func formatByteSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
