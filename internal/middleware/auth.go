package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/taskhub/taskhub-api/internal/access"
	"github.com/taskhub/taskhub-api/internal/constants"
	apierrors "github.com/taskhub/taskhub-api/internal/errors"
	"github.com/taskhub/taskhub-api/internal/models"
)

// RequireAuth validates the Bearer token and stores the actor's id and role
// in the request context.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			apierrors.Unauthorized(c, "Missing bearer token")
			c.Abort()
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			// Only HMAC is accepted.
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		sub, ok := claims["sub"].(float64) // JWT numbers decode as float64
		if !ok || sub < 0 {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		role := models.RoleUser
		if r, ok := claims["role"].(string); ok && r != "" {
			role = models.UserRole(r)
		}

		c.Set(constants.ContextKeyUserID, uint64(sub))
		c.Set(constants.ContextKeyUserRole, role)
		c.Next()
	}
}

// RequireAdmin rejects non-admin actors. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !actor.IsAdmin() {
			apierrors.Forbidden(c, "Admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor retrieves the authenticated actor from the request context.
func GetActor(c *gin.Context) (access.Actor, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return access.Actor{}, false
	}

	id, ok := userID.(uint64)
	if !ok {
		return access.Actor{}, false
	}

	role := models.RoleUser
	if r, exists := c.Get(constants.ContextKeyUserRole); exists {
		if v, ok := r.(models.UserRole); ok {
			role = v
		}
	}

	return access.Actor{ID: id, Role: role}, true
}
