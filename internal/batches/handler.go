package batches

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/batch"
	"classroom-backend/internal/results"
	"classroom-backend/internal/shared/server/middleware"
	"classroom-backend/internal/shared/server/respond"
)

// Handler exposes synchronous batch generation.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches batch routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/batches/kinds", h.kinds)
	rg.POST("/batches/:kind", h.run)
	rg.POST("/batches/:kind/regenerate", h.regenerate)
	rg.POST("/batches/:kind/text", h.text)
	rg.POST("/batches/:kind/docx", h.docx)
}

func (h *Handler) kinds(c *gin.Context) {
	templates := h.Svc.Kinds()
	out := make([]KindResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toKindResponse(t))
	}
	respond.OK(c, gin.H{"kinds": out})
}

func (h *Handler) run(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", respond.ValidationDetails(err))
		return
	}
	kind := c.Param("kind")
	in := RunInput{
		OwnerID:  middleware.UserIDFromContext(c),
		Settings: batch.Settings{Kind: kind, Values: req.Settings},
		Items:    toItems(req.Items),
		Save:     req.Save,
	}
	c.Set(middleware.LogKeyBatchKind, kind)
	c.Set(middleware.LogKeyItemCount, len(in.Items))

	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		h.stream(c, in)
		return
	}

	res, err := h.Svc.Run(c.Request.Context(), in, nil)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, res)
}

// stream runs the batch in the background and relays progress as server-sent
// events, finishing with a single result event.
func (h *Handler) stream(c *gin.Context, in RunInput) {
	// Validation errors must surface as plain JSON before any event is written.
	if err := h.Svc.checkKind(in.Settings.Kind); err != nil {
		h.writeError(c, err)
		return
	}
	if err := batch.Validate(in.Items, h.Svc.MaxItems); err != nil {
		h.writeError(c, err)
		return
	}

	events := make(chan ProgressEvent, len(in.Items))
	done := make(chan RunResult, 1)
	go func() {
		res, _ := h.Svc.Run(c.Request.Context(), in, func(n, total int) {
			events <- ProgressEvent{Done: n, Total: total}
		})
		close(events)
		done <- res
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	for ev := range events {
		c.SSEvent("progress", ev)
		c.Writer.Flush()
	}
	c.SSEvent("result", <-done)
	c.Writer.Flush()
}

func (h *Handler) regenerate(c *gin.Context) {
	var req RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", respond.ValidationDetails(err))
		return
	}
	kind := c.Param("kind")
	c.Set(middleware.LogKeyBatchKind, kind)
	out, err := h.Svc.Regenerate(c.Request.Context(), batch.Settings{Kind: kind, Values: req.Settings}, toItem(req.Item))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"outcome": out, "draft": batch.NewDrafts([]batch.Outcome{out})[0]})
}

func (h *Handler) text(c *gin.Context) {
	var req FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", respond.ValidationDetails(err))
		return
	}
	style := results.ParseStyle(req.Style)
	text, err := h.Svc.Text(style, batch.Settings{Kind: c.Param("kind"), Values: req.Settings}, req.Outcomes, req.Drafts)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, TextResponse{Style: string(style), Text: text})
}

func (h *Handler) docx(c *gin.Context) {
	var req FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", respond.ValidationDetails(err))
		return
	}
	settings := batch.Settings{Kind: c.Param("kind"), Values: req.Settings}
	res, err := h.Svc.Docx(c.Request.Context(), middleware.UserIDFromContext(c), settings, req.Outcomes, req.Drafts)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if res.Export != nil {
		c.Header("X-Export-Id", res.Export.ID)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	c.Data(http.StatusOK, results.DocxContentType, res.Data)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, batch.ErrUnknownKind):
		respond.Error(c, http.StatusNotFound, "unknown_kind", "unknown content kind", nil)
	case IsValidation(err):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "request failed", nil)
	}
}
