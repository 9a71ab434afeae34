package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"threads-server/middlewares"
	"threads-server/models"
)

// currentUser pulls the authenticated account set by the auth middleware.
// Aborts with 401 when it is missing.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(middlewares.UserKey)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	user, ok := value.(*models.User)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return user, true
}
