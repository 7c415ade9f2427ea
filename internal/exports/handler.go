package exports

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/shared/server/middleware"
	"classroom-backend/internal/shared/server/respond"
	"classroom-backend/internal/shared/telemetry"
)

// Handler serves stored exports.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/exports", h.list)
	rg.GET("/exports/:id/download", h.download)
}

// ExportResponse is the outward-facing representation of an export.
type ExportResponse struct {
	ExportID  string    `json:"exportId"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	FileName  string    `json:"fileName"`
	SizeBytes int64     `json:"sizeBytes"`
	ItemCount int       `json:"itemCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToResponse converts an Export for JSON output.
func ToResponse(e Export) ExportResponse {
	return ExportResponse{
		ExportID:  e.ID,
		Title:     e.Title,
		Category:  e.Category,
		FileName:  e.FileName,
		SizeBytes: e.SizeBytes,
		ItemCount: e.ItemCount,
		CreatedAt: e.CreatedAt,
	}
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list exports", nil)
		return
	}
	resp := make([]ExportResponse, 0, len(items))
	for _, e := range items {
		resp = append(resp, ToResponse(e))
	}
	respond.OK(c, resp)
}

func (h *Handler) download(c *gin.Context) {
	export, rc, err := h.Svc.Open(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid export id", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open export", nil)
		}
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Header("Content-Type", export.ContentType)
	if export.SizeBytes > 0 {
		c.Header("Content-Length", strconv.FormatInt(export.SizeBytes, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		telemetry.Warn("export.download_interrupted", map[string]any{"export_id": export.ID, "error": err})
	}
}
