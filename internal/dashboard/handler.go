package dashboard

import (
	"errors"
	"net/http"

	"fitclub/internal/api"
	"fitclub/internal/auth"
	"fitclub/internal/event"
	"fitclub/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Client dashboard
// @Description  Active membership, the next events from the caller's trainer and the caller's registrations
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dashboard.ClientDashboard
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /dashboard [get]
func (h *Handler) Client(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	d, err := h.service.Client(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoClientProfile) {
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You need a client profile"})
			return
		}
		logger.WithError(err).Error("failed to build client dashboard", "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, d)
}

// @Summary      Trainer dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dashboard.TrainerDashboard
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /trainer/dashboard [get]
func (h *Handler) Trainer(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	d, err := h.service.Trainer(c.Request.Context(), p)
	if err != nil {
		if errors.Is(err, event.ErrNoTrainerProfile) {
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You need a trainer profile"})
			return
		}
		logger.WithError(err).Error("failed to build trainer dashboard", "user_id", p.UserID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, d)
}

// @Summary      Admin dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dashboard.AdminDashboard
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/dashboard [get]
func (h *Handler) Admin(c *gin.Context) {
	d, err := h.service.Admin(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("failed to build admin dashboard")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, d)
}
