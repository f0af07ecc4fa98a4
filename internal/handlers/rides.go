package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ride-admin-backend/internal/services"
)

// ListRides serves the paginated, filterable ride list.
func ListRides(queries *services.RideQueryService, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := services.ParseRideListOptions(c.Request.URL.Query())
		if err != nil {
			respondError(c, err)
			return
		}

		result, err := queries.ListRides(c.Request.Context(), opts)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, services.NewPage(absoluteURL(c, baseURL), result.Page, result.Count, result.Results))
	}
}

// GetRide returns one ride with its full event history.
func GetRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		ride, err := rides.GetRide(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func CreateRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ride, err := rides.CreateRide(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ride)
	}
}

// UpdateRide serves PATCH; absent fields keep their value.
func UpdateRide(rides *services.RideService) gin.HandlerFunc {
	return writeRide(rides.UpdateRide)
}

// ReplaceRide serves PUT, which needs every writable field.
func ReplaceRide(rides *services.RideService) gin.HandlerFunc {
	return writeRide(rides.ReplaceRide)
}

func writeRide(write func(context.Context, uint, services.RideInput) (*services.RideDetail, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		var input services.RideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ride, err := write(c.Request.Context(), id, input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func DeleteRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		if err := rides.DeleteRide(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// AddRideEvent appends an event to a ride.
func AddRideEvent(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		var input struct {
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		event, err := rides.AddEvent(c.Request.Context(), id, input.Description)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, event)
	}
}
