package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"threads-server/repository"
	"threads-server/services"
)

// CookieName is the session cookie set on sign-in.
const CookieName = "jwt"

// UserKey is the context key the authenticated *models.User is stored under.
const UserKey = "user"

// TokenAuth verifies the session token (cookie first, then Authorization
// bearer) and loads the account onto the request context.
func TokenAuth(users repository.UserStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, err := services.ParseToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
