// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nice1tools/market-backend/internal/utils"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization header",
			})
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("account", claims.Account)
		c.Set("whitelisted", claims.Whitelisted)
		c.Next()
	}
}

// WhitelistRequired gates the creator-only surface. Membership was checked
// against the on-chain whitelist at login and carried in the token.
func WhitelistRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		whitelisted, exists := c.Get("whitelisted")
		if !exists || whitelisted != true {
			utils.ForbiddenResponse(c, "creator whitelist membership required")
			c.Abort()
			return
		}
		c.Next()
	}
}
