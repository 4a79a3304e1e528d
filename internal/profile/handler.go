package profile

import (
	"errors"
	"net/http"

	"fitclub/internal/api"
	"fitclub/internal/auth"
	"fitclub/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Update my client profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body profile.UpdateClientRequest true "Profile fields"
// @Success      200 {object} profile.ClientProfile
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /me/profile [put]
func (h *Handler) UpdateMyProfile(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req UpdateClientRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdateClient(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Client profile not found"})
			return
		}
		logger.WithError(err).Error("failed to update client profile", "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// @Summary      List trainers
// @Tags         trainers
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} profile.TrainerProfile
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /trainers [get]
func (h *Handler) ListTrainers(c *gin.Context) {
	trainers, err := h.service.ListTrainers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch trainers"})
		return
	}

	c.JSON(http.StatusOK, trainers)
}

// @Summary      Create a trainer profile
// @Description  Admin-only: attach a trainer profile to an existing account and grant it the trainer role
// @Tags         admin,trainers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body profile.CreateTrainerRequest true "Trainer payload"
// @Success      201 {object} profile.TrainerProfile
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/trainers [post]
func (h *Handler) CreateTrainer(c *gin.Context) {
	var req CreateTrainerRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.CreateTrainer(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found"})
		case errors.Is(err, ErrTrainerExists):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "User is already a trainer"})
		default:
			logger.WithError(err).Error("failed to create trainer profile")
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create trainer"})
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

// @Summary      Assign a client's primary trainer
// @Description  Admin-only: set trainer_id, or send null to clear it
// @Tags         admin,trainers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userID path int true "Client user ID"
// @Param        request body profile.AssignTrainerRequest true "Trainer"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/clients/{userID}/trainer [put]
func (h *Handler) AssignTrainer(c *gin.Context) {
	userID, ok := api.ParamID(c, "userID")
	if !ok {
		return
	}

	var req AssignTrainerRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.AssignTrainer(c.Request.Context(), userID, req.TrainerID); err != nil {
		switch {
		case errors.Is(err, ErrClientNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Client profile not found"})
		case errors.Is(err, ErrTrainerNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Trainer not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to assign trainer"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "trainer updated"})
}
