package payment

import (
	"errors"
	"io"
	"net/http"

	"fitclub/internal/api"
	"fitclub/internal/auth"
	"fitclub/internal/logger"
	"fitclub/internal/membership"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 65536

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Start checkout
// @Description  Opens a hosted checkout page for the plan. Same preconditions as activating a membership.
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        planID path int true "Plan ID"
// @Success      200 {object} payment.CheckoutResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      502 {object} api.ErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /payments/checkout/{planID} [post]
func (h *Handler) Checkout(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	planID, ok := api.ParamID(c, "planID")
	if !ok {
		return
	}

	resp, err := h.service.CreateCheckout(c.Request.Context(), p.UserID, p.Email, planID)
	if err != nil {
		h.respondError(c, err, "Failed to start checkout")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary      Checkout return
// @Description  Confirms a completed checkout and issues the membership. Safe to call more than once.
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        session_id query string true "Checkout session ID"
// @Success      200 {object} payment.ConfirmResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      502 {object} api.ErrorResponse
// @Router       /payments/success [get]
func (h *Handler) Success(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	resp, err := h.service.ConfirmCheckout(c.Request.Context(), userID, c.Query("session_id"))
	if err != nil {
		h.respondError(c, err, "Failed to confirm payment")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary      Checkout cancelled
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.MessageResponse
// @Router       /payments/cancel [get]
func (h *Handler) Cancel(c *gin.Context) {
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Payment cancelled. You have not been charged."})
}

// @Summary      My payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} payment.Payment
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /payments [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	payments, err := h.service.ListPayments(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}

// @Summary      Stripe webhook
// @Description  Verified with the Stripe-Signature header
// @Tags         payments
// @Accept       json
// @Produce      json
// @Success      200 {object} payment.WebhookResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /payments/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Failed to read body"})
		return
	}

	resp, err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, ErrWebhookNotConfigured):
			logger.Warn("webhook received but STRIPE_WEBHOOK_SECRET is not set")
			c.JSON(http.StatusOK, api.WarningResponse{Warning: "webhook secret not configured"})
		case errors.Is(err, ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid signature"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Webhook processing failed"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	if status, msg, ok := membership.RejectionStatus(err); ok {
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}

	switch {
	case errors.Is(err, ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "Online payments are not available"})
	case errors.Is(err, ErrProvider):
		logger.WithError(err).Error("payment provider call failed")
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "The payment provider could not be reached, please try again"})
	case errors.Is(err, ErrMissingSession):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "session_id is required"})
	case errors.Is(err, ErrInvalidMetadata):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "This checkout session cannot be used"})
	case errors.Is(err, ErrSessionMismatch):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "This checkout session belongs to another account"})
	case errors.Is(err, ErrPaymentNotCompleted):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Payment has not completed"})
	case errors.Is(err, ErrPaymentRefunded):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "This payment has been refunded"})
	default:
		logger.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
