package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/services"
	"github.com/gizaedu/exam-service/internal/session"
	"github.com/gizaedu/exam-service/internal/utils"
)

// SessionAuthMiddleware authenticates requests by their session token
type SessionAuthMiddleware struct {
	auth   services.AuthService
	logger utils.Logger
}

func NewSessionAuthMiddleware(auth services.AuthService, logger utils.Logger) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{auth: auth, logger: logger}
}

// AuthMiddleware restores the session behind the bearer token and
// revalidates the account on every request
func (m *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "authorization header missing or malformed",
			})
			return
		}

		sc, err := m.auth.Restore(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrSessionInvalid) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "session expired or revoked"})
				return
			}
			utils.FromContext(c, m.logger).Error("Session restore failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
			return
		}

		user := sc.User
		c.Set(ctxSessionToken, token)
		c.Set(ctxUserID, user.ID)
		c.Set(ctxUser, user)
		c.Set(ctxUserRole, user.Role)
		c.Set(ctxUserEmail, user.Email)

		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role
func (m *SessionAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ctxUserRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "user role not found in context"})
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "invalid user role format"})
			return
		}

		for _, requiredRole := range requiredRoles {
			if role == requiredRole || role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
