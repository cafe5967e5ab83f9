package middleware

import (
	"strings"

	"newsroom-cms/helper"
	"newsroom-cms/models"
	"newsroom-cms/services"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// AuthMiddleware requires a valid bearer token and stores the caller's
// identity in the gin context.
func AuthMiddleware(tokens *services.TokenManager, h *helper.HTTPHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			h.SendUnauthorizedError(c, "Authorization header required", h.EmptyJsonMap())
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			h.SendUnauthorizedError(c, "Bearer token required", h.EmptyJsonMap())
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			h.SendUnauthorizedError(c, "Invalid token: "+err.Error(), h.EmptyJsonMap())
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// RequireRole lets the request through when the caller's role ranks at or
// above min.
func RequireRole(min models.UserRole, h *helper.HTTPHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)
		if actor.IsAnonymous() {
			h.SendUnauthorizedError(c, "User role not found", h.EmptyJsonMap())
			c.Abort()
			return
		}

		if !actor.Role.AtLeast(min) {
			h.SendForbiddenError(c, "Insufficient permissions", h.EmptyJsonMap())
			c.Abort()
			return
		}

		c.Next()
	}
}

// Actor returns the authenticated caller, or models.Anonymous.
func Actor(c *gin.Context) models.Actor {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return models.Anonymous
	}
	role, _ := c.Get(ctxRole)

	userID, _ := id.(uint)
	userRole, _ := role.(models.UserRole)
	return models.Actor{ID: userID, Role: userRole}
}
