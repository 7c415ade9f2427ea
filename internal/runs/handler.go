package runs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/batch"
	"classroom-backend/internal/shared/server/middleware"
	"classroom-backend/internal/shared/server/respond"
)

// Handler exposes async runs over HTTP.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches run routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/runs", h.submit)
	rg.GET("/runs/:id", h.get)
	rg.POST("/runs/:id/cancel", h.cancel)
}

func (h *Handler) submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", respond.ValidationDetails(err))
		return
	}

	run, err := h.Svc.Submit(c.Request.Context(), SubmitInput{
		OwnerID:   middleware.UserIDFromContext(c),
		RequestID: c.GetString("requestId"),
		Settings:  batch.Settings{Kind: req.Kind, Values: req.Settings},
		Items:     ToItems(req.Items),
		Save:      req.Save,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", validationMessage(err), nil)
		default:
			respond.Error(c, http.StatusServiceUnavailable, "queue_unavailable", "failed to queue run", nil)
		}
		return
	}

	c.Set(middleware.LogKeyRunID, run.ID)
	c.Set(middleware.LogKeyBatchKind, run.Settings.Kind)
	c.Set(middleware.LogKeyItemCount, len(run.Items))
	respond.Accepted(c, "/api/v1/runs/"+run.ID, toResponse(run))
}

func (h *Handler) get(c *gin.Context) {
	run, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, toResponse(run))
}

func (h *Handler) cancel(c *gin.Context) {
	run, err := h.Svc.Cancel(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(middleware.LogKeyRunID, run.ID)
	respond.Accepted(c, "/api/v1/runs/"+run.ID, toResponse(run))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, "invalid_state", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load run", nil)
	}
}

// validationMessage maps whole-batch validation failures to user text.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, batch.ErrUnknownKind):
		return "unknown content kind"
	case errors.Is(err, batch.ErrNoItems):
		return "at least one item is required"
	case errors.Is(err, batch.ErrNoContent):
		return "at least one item needs some details"
	case errors.Is(err, batch.ErrTooManyItems):
		return "too many items in one batch"
	default:
		return "invalid request"
	}
}
