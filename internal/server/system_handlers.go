package server

import (
	"context"
	"net/http"
	"sort"
	"time"

	"fitclub/internal/api"
	"fitclub/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 2 * time.Second

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// @Summary      Health check
// @Description  Pings the database and Redis
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Failure      503 {object} api.HealthResponse
// @Router       /health [get]
func Health(checks map[string]Check) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		resp := api.HealthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.WithError(err).Warn("health check failed", "check", name)
				resp.Status = "degraded"
				resp.Checks[name] = "down"
				continue
			}
			resp.Checks[name] = "ok"
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

// Mailer queues a plain text message.
type Mailer interface {
	Send(ctx context.Context, to, name, subject, body string) error
}

type TestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// @Summary      Queue a test email
// @Tags         system
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body server.TestEmailRequest true "Recipient"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/test-email [post]
func TestEmail(mailer Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TestEmailRequest
		if !api.BindJSON(c, &req) {
			return
		}

		if err := mailer.Send(c.Request.Context(), req.Email, "Test User", "Test email from FitClub", "Email delivery is working."); err != nil {
			logger.WithError(err).Error("failed to queue test email")
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to queue email"})
			return
		}

		c.JSON(http.StatusOK, api.MessageResponse{Message: "Email queued successfully"})
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
