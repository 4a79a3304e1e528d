package membership

import (
	"errors"
	"net/http"

	"fitclub/internal/api"
	"fitclub/internal/auth"
	"fitclub/internal/logger"
	"fitclub/internal/plan"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RejectionStatus maps an eligibility error to the response it should
// produce. ok is false for errors that are not precondition failures.
func RejectionStatus(err error) (status int, message string, ok bool) {
	switch {
	case errors.Is(err, plan.ErrPlanNotFound):
		return http.StatusNotFound, "Plan not found", true
	case errors.Is(err, plan.ErrPlanInactive):
		return http.StatusBadRequest, "This plan is not available", true
	case errors.Is(err, ErrTrainerMismatch):
		return http.StatusForbidden, "You can only buy plans from your trainer", true
	case errors.Is(err, ErrNotEligible):
		return http.StatusForbidden, "You need a client account to hold a membership", true
	case errors.Is(err, ErrAlreadyActive):
		return http.StatusConflict, "You already have an active membership", true
	case errors.Is(err, ErrNoMembership):
		return http.StatusForbidden, "An active membership is required", true
	}
	return 0, "", false
}

// @Summary      Activate a membership
// @Description  Starts a membership on the given plan today, without payment
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        planID path int true "Plan ID"
// @Success      201 {object} membership.Membership
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /memberships/activate/{planID} [post]
func (h *Handler) Activate(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	planID, ok := api.ParamID(c, "planID")
	if !ok {
		return
	}

	m, err := h.service.Activate(c.Request.Context(), userID, planID)
	if err != nil {
		if status, msg, ok := RejectionStatus(err); ok {
			c.JSON(status, api.ErrorResponse{Error: msg})
			return
		}
		logger.WithError(err).Error("failed to activate membership", "user_id", userID, "plan_id", planID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to activate membership"})
		return
	}

	c.JSON(http.StatusCreated, m)
}

// @Summary      List my memberships
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} membership.MembershipView
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /memberships [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	views, err := h.service.ListFor(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch memberships"})
		return
	}

	c.JSON(http.StatusOK, views)
}

// @Summary      Current membership
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} membership.ActiveResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /memberships/active [get]
func (h *Handler) Active(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	v, found, err := h.service.ActiveFor(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch membership"})
		return
	}

	c.JSON(http.StatusOK, ActiveResponse{Active: found, Membership: v})
}

// @Summary      Cancel a membership
// @Description  Admin-only
// @Tags         admin,memberships
// @Produce      json
// @Security     BearerAuth
// @Param        membershipID path int true "Membership ID"
// @Success      200 {object} membership.Membership
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/memberships/{membershipID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := api.ParamID(c, "membershipID")
	if !ok {
		return
	}

	m, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
			return
		}
		logger.WithError(err).Error("failed to cancel membership", "membership_id", id)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel membership"})
		return
	}

	c.JSON(http.StatusOK, m)
}
