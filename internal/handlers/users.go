package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ride-admin-backend/internal/services"
)

// GetProfile returns the authenticated user's profile
func GetProfile(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		user, err := rides.GetUser(c.Request.Context(), userId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
