package event

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

// @Summary      List upcoming events
// @Description  Events dated today or later that are not cancelled. Clients with a primary trainer only see that trainer's events.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        type query string false "Event type" Enums(running_club, class, challenge)
// @Param        min_distance query number false "Minimum distance in km"
// @Param        max_distance query number false "Maximum distance in km"
// @Success      200 {array} event.EventWithAvailability
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	filter := ParseFilter(c.Query("type"), c.Query("min_distance"), c.Query("max_distance"))

	events, err := h.service.ListVisible(c.Request.Context(), userID, filter)
	if err != nil {
		logger.WithError(err).Error("failed to list events", "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        eventID path int true "Event ID"
// @Success      200 {object} event.EventWithAvailability
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /events/{eventID} [get]
func (h *Handler) GetEvent(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, ok := api.ParamID(c, "eventID")
	if !ok {
		return
	}

	e, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch event"})
		return
	}

	c.JSON(http.StatusOK, e)
}

// @Summary      Create an event
// @Description  Trainers create events under their own profile; admins may pick any trainer or none
// @Tags         trainer,events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body event.CreateEventRequest true "Event"
// @Success      201 {object} event.Event
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /trainer/events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateEventRequest
	if !api.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		if status, msg, ok := RejectionStatus(err); ok {
			c.JSON(status, api.ErrorResponse{Error: msg})
			return
		}
		logger.WithError(err).Error("failed to create event", "user_id", p.UserID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, e)
}

// @Summary      Cancel an event
// @Tags         trainer,events
// @Produce      json
// @Security     BearerAuth
// @Param        eventID path int true "Event ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /trainer/events/{eventID}/cancel [post]
func (h *Handler) CancelEvent(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, ok := api.ParamID(c, "eventID")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), p, id); err != nil {
		if status, msg, ok := RejectionStatus(err); ok {
			c.JSON(status, api.ErrorResponse{Error: msg})
			return
		}
		logger.WithError(err).Error("failed to cancel event", "event_id", id)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel event"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Event cancelled"})
}

// RejectionStatus maps event management errors to a response. ok is false
// for unexpected errors.
func RejectionStatus(err error) (status int, message string, ok bool) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return http.StatusNotFound, "Event not found", true
	case errors.Is(err, ErrNotEventOwner):
		return http.StatusForbidden, "You can only manage your own events", true
	case errors.Is(err, ErrNoTrainerProfile):
		return http.StatusForbidden, "A trainer profile is required", true
	case errors.Is(err, ErrTrainerNotFound):
		return http.StatusBadRequest, "Trainer not found", true
	case errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidTime),
		errors.Is(err, ErrInvalidTimes),
		errors.Is(err, ErrInvalidCapacity):
		return http.StatusBadRequest, err.Error(), true
	}
	return 0, "", false
}
