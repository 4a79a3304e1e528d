package user

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

// Register godoc
// @Summary      Register new user
// @Description  Creates a new member account with an empty client profile and returns access & refresh tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "User registration data"
// @Success      201      {object}  LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	user, access, refresh, err := h.service.Register(c.Request.Context(), req)
	switch {
	case errors.Is(err, ErrEmailExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Email already registered"})
	case err != nil:
		logger.WithError(err).Error("failed to register user")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create user"})
	default:
		c.JSON(http.StatusCreated, LoginResponse{AccessToken: access, RefreshToken: refresh, User: *user})
	}
}

// Login godoc
// @Summary      Login user
// @Description  Authenticates user by email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "User credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}

	user, access, refresh, err := h.service.Login(c.Request.Context(), req)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid email or password"})
	case err != nil:
		logger.WithError(err).Error("failed to sign login tokens")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to generate tokens"})
	default:
		c.JSON(http.StatusOK, LoginResponse{AccessToken: access, RefreshToken: refresh, User: *user})
	}
}

// GetMe godoc
// @Summary      Get current user
// @Description  Returns the authenticated account with its client and trainer profiles.
// @Tags         user
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  MeResponse
// @Failure      401  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	me, err := h.service.Me(c.Request.Context(), userID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found"})
	case err != nil:
		logger.WithError(err).Error("failed to load account", "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load user"})
	default:
		c.JSON(http.StatusOK, me)
	}
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Returns new access token using a valid refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Refresh token payload"
// @Success      200      {object}  RefreshResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "refresh_token is required"})
		return
	}

	token, user, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "user not found"})
	case err != nil:
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid or expired refresh token"})
	default:
		c.JSON(http.StatusOK, RefreshResponse{AccessToken: token, User: *user})
	}
}
