package registration

import (
	"errors"
	"net/http"

	"fitclub/internal/api"
	"fitclub/internal/auth"
	"fitclub/internal/event"
	"fitclub/internal/logger"
	"fitclub/internal/membership"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func respondRejection(c *gin.Context, err error) bool {
	if status, msg, ok := membership.RejectionStatus(err); ok {
		c.JSON(status, api.ErrorResponse{Error: msg})
		return true
	}
	if status, msg, ok := event.RejectionStatus(err); ok {
		c.JSON(status, api.ErrorResponse{Error: msg})
		return true
	}

	switch {
	case errors.Is(err, ErrEventCancelled):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "This event has been cancelled"})
	case errors.Is(err, ErrEventPast):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "This event has already taken place"})
	case errors.Is(err, ErrEventFull):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "This event is full"})
	case errors.Is(err, ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "You are already registered for this event"})
	case errors.Is(err, ErrRegistrationNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Registration not found"})
	default:
		return false
	}
	return true
}

// @Summary      Join an event
// @Description  Requires a client profile and an active membership
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        eventID path int true "Event ID"
// @Success      201 {object} registration.Registration
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /events/{eventID}/join [post]
func (h *Handler) Join(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	eventID, ok := api.ParamID(c, "eventID")
	if !ok {
		return
	}

	reg, err := h.service.Join(c.Request.Context(), userID, eventID)
	if err != nil {
		if respondRejection(c, err) {
			return
		}
		logger.WithError(err).Error("failed to join event", "user_id", userID, "event_id", eventID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to join event"})
		return
	}

	c.JSON(http.StatusCreated, reg)
}

// @Summary      Leave an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        eventID path int true "Event ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /events/{eventID}/leave [post]
func (h *Handler) Leave(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	eventID, ok := api.ParamID(c, "eventID")
	if !ok {
		return
	}

	cancelled, err := h.service.Leave(c.Request.Context(), userID, eventID)
	if err != nil {
		logger.WithError(err).Error("failed to leave event", "user_id", userID, "event_id", eventID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to leave event"})
		return
	}

	if !cancelled {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "You were not registered for this event"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Registration cancelled"})
}

// @Summary      My registrations
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} registration.RegistrationWithEvent
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /registrations [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	regs, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch registrations"})
		return
	}

	c.JSON(http.StatusOK, regs)
}

// @Summary      Event registrations
// @Description  Attendee list for an event the caller manages
// @Tags         trainer
// @Produce      json
// @Security     BearerAuth
// @Param        eventID path int true "Event ID"
// @Success      200 {array} registration.Attendee
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /trainer/events/{eventID}/registrations [get]
func (h *Handler) ListEventRegistrations(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	eventID, ok := api.ParamID(c, "eventID")
	if !ok {
		return
	}

	attendees, err := h.service.ListForEvent(c.Request.Context(), p, eventID)
	if err != nil {
		if respondRejection(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch registrations"})
		return
	}

	c.JSON(http.StatusOK, attendees)
}

// @Summary      Record attendance
// @Tags         trainer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        registrationID path int true "Registration ID"
// @Param        request body registration.AttendanceRequest true "Attendance"
// @Success      200 {object} registration.Registration
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /trainer/registrations/{registrationID}/attendance [patch]
func (h *Handler) MarkAttendance(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, ok := api.ParamID(c, "registrationID")
	if !ok {
		return
	}

	var req AttendanceRequest
	if !api.BindJSON(c, &req) {
		return
	}

	reg, err := h.service.MarkAttendance(c.Request.Context(), p, id, req)
	if err != nil {
		if respondRejection(c, err) {
			return
		}
		logger.WithError(err).Error("failed to record attendance", "registration_id", id)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to record attendance"})
		return
	}

	c.JSON(http.StatusOK, reg)
}
