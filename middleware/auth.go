package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Matheus-Salgado02/cinelist/helper"
	"github.com/Matheus-Salgado02/cinelist/logging"
)

// UserIDKey is the gin context key holding the authenticated user's hex id.
const UserIDKey = "user_id"

// Authenticator verifies a bearer token and returns the user id it carries.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := helper.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}

		userID, err := auth.Authenticate(token)
		if err != nil {
			logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("bearer token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(logging.ContextWithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// UserID returns the id set by AuthMiddleware.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
