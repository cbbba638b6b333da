package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nasihat/dashboard-api/pkg/helpers"
	"github.com/nasihat/dashboard-api/pkg/response"
)

const CtxUserIDKey = "userID"

// Auth validates the bearer token from the auth cookie or the
// Authorization header and injects the user id into the Gin context.
// Tokens are stateless; signature and expiry are the only checks.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := helpers.TokenFromRequest(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
