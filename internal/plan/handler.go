package plan

import (
	"errors"
	"net/http"

	"fitclub/internal/api"
	"fitclub/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      List plans
// @Description  Active membership plans, cheapest first
// @Tags         plans
// @Produce      json
// @Success      200 {array} plan.Plan
// @Failure      500 {object} api.ErrorResponse
// @Router       /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("failed to list plans")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch plans"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

// @Summary      Get a plan
// @Tags         plans
// @Produce      json
// @Param        planID path int true "Plan ID"
// @Success      200 {object} plan.Plan
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /plans/{planID} [get]
func (h *Handler) GetPlan(c *gin.Context) {
	id, ok := api.ParamID(c, "planID")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch plan"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// @Summary      Create a plan
// @Description  Admin-only: add a membership plan to the catalog
// @Tags         admin,plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body plan.CreatePlanRequest true "Plan payload"
// @Success      201 {object} plan.Plan
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/plans [post]
func (h *Handler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrTrainerNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Trainer not found"})
		default:
			logger.WithError(err).Error("failed to create plan")
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create plan"})
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

// @Summary      Enable or disable a plan
// @Tags         admin,plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        planID path int true "Plan ID"
// @Param        request body plan.SetActiveRequest true "Active flag"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/plans/{planID}/active [patch]
func (h *Handler) SetPlanActive(c *gin.Context) {
	id, ok := api.ParamID(c, "planID")
	if !ok {
		return
	}

	var req SetActiveRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update plan"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "plan updated"})
}
