package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ride-admin-backend/internal/services"
)

// ListRideEvents is the read-only event listing.
func ListRideEvents(rides *services.RideService, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := services.ParseEventQuery(c.Query)
		if err != nil {
			respondError(c, err)
			return
		}

		events, count, err := rides.ListEvents(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, services.NewPage(absoluteURL(c, baseURL), q.Page, count, events))
	}
}
