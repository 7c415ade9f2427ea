package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/shared/server/middleware"
	"classroom-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.PATCH("/me", h.updateProfile)
}

type profileRequest struct {
	FullName   string `json:"fullName" binding:"max=200"`
	SchoolName string `json:"schoolName" binding:"max=200"`
	GradeLevel string `json:"gradeLevel" binding:"max=50"`
}

type meResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	PictureURL string `json:"pictureUrl"`
	SchoolName string `json:"schoolName"`
	GradeLevel string `json:"gradeLevel"`
}

func toMeResponse(u User) meResponse {
	return meResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		PictureURL: u.PictureURL,
		SchoolName: u.SchoolName,
		GradeLevel: u.GradeLevel,
	}
}

func (h *Handler) me(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "login required", nil)
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, toMeResponse(user))
}

func (h *Handler) updateProfile(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "login required", nil)
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", respond.ValidationDetails(err))
		return
	}
	user, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserIDFromContext(c), Profile{
		FullName:   req.FullName,
		SchoolName: req.SchoolName,
		GradeLevel: req.GradeLevel,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, toMeResponse(user))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
	}
}
