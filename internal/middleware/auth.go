// internal/middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/pollopollo-backend/internal/i18n"
	"github.com/javajoker/pollopollo-backend/internal/models"
	"github.com/javajoker/pollopollo-backend/internal/utils"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}
		userID, err := claims.ID()
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		setIdentity(c, userID, claims)
		c.Next()
	}
}

// RoleRequired must run after AuthRequired.
func RoleRequired(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := utils.GetUserRoleFromContext(c)
		if !exists || userRole != string(role) {
			lang := utils.GetLangFromContext(c)
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyUserWrongRole, role))
			c.Abort()
			return
		}
		c.Next()
	}
}

func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			c.Next()
			return
		}
		if userID, err := claims.ID(); err == nil {
			setIdentity(c, userID, claims)
		}
		c.Next()
	}
}

// ServiceTokenRequired admits machine callers presenting token in the
// X-Service-Token header. An empty token admits nobody.
func ServiceTokenRequired(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader("X-Service-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			lang := utils.GetLangFromContext(c)
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}
		c.Set("service", true)
		c.Next()
	}
}

func setIdentity(c *gin.Context, userID uint, claims *utils.JWTClaims) {
	c.Set("user_id", userID)
	c.Set("user_name", claims.Name)
	c.Set("user_role", claims.Role)
}
