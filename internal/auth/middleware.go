package auth

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"fitclub/internal/api"
)

// Keys under which the authenticated caller is stored on the gin context.
const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
)

func deny(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: msg})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "Authorization header required"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", "Invalid authorization header format"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "Token is empty"
	}
	return token, ""
}

// AuthMiddleware accepts only access tokens signed with secret and exposes
// the caller through GetPrincipal.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, problem := bearerToken(c.GetHeader("Authorization"))
		if problem != "" {
			deny(c, http.StatusUnauthorized, problem)
			return
		}

		claims, err := ValidateToken(token, secret)
		switch {
		case errors.Is(err, ErrTokenExpired):
			deny(c, http.StatusUnauthorized, "Token expired")
			return
		case err != nil:
			deny(c, http.StatusUnauthorized, "Invalid or malformed token")
			return
		case claims.TokenType != tokenAccess:
			deny(c, http.StatusUnauthorized, "Access token required")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole allows the request through when the caller holds any of the
// given roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ctxUserRole)
		if !ok {
			deny(c, http.StatusUnauthorized, "User role not found")
			return
		}
		name, ok := role.(string)
		if !ok {
			deny(c, http.StatusUnauthorized, "Invalid role type")
			return
		}
		if !slices.Contains(allowed, name) {
			deny(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// Principal is the authenticated caller as seen by the domain services.
type Principal struct {
	UserID int
	Email  string
	Role   string
}

func (p Principal) IsStaff() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsTrainer() bool {
	return p.Role == RoleTrainer
}

func GetPrincipal(c *gin.Context) (Principal, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return Principal{}, false
	}
	return Principal{
		UserID: id,
		Email:  c.GetString(ctxUserEmail),
		Role:   c.GetString(ctxUserRole),
	}, true
}

func GetUserID(c *gin.Context) (int, bool) {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	n, ok := id.(int)
	return n, ok
}
