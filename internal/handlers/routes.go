package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ride-admin-backend/internal/middleware"
	"github.com/chachabrian/ride-admin-backend/internal/services"
)

// Deps are the collaborators the API routes need.
type Deps struct {
	Queries   *services.RideQueryService
	Rides     *services.RideService
	Hub       *services.Hub
	Health    Pinger
	JWTSecret string
	BaseURL   string
}

// RegisterRoutes mounts the admin API on r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", Health(d.Health))

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.AdminOnly())
	{
		if d.Hub != nil {
			api.GET("/ws", WebSocketHandler(d.Hub))
		}

		users := api.Group("/users")
		{
			users.GET("/me", GetProfile(d.Rides))
		}

		rides := api.Group("/rides")
		{
			rides.GET("/", ListRides(d.Queries, d.BaseURL))
			rides.POST("/", CreateRide(d.Rides))
			rides.GET("/:id/", GetRide(d.Rides))
			rides.PUT("/:id/", ReplaceRide(d.Rides))
			rides.PATCH("/:id/", UpdateRide(d.Rides))
			rides.DELETE("/:id/", DeleteRide(d.Rides))
			rides.POST("/:id/add_event/", AddRideEvent(d.Rides))
		}

		events := api.Group("/ride-events")
		{
			events.GET("/", ListRideEvents(d.Rides, d.BaseURL))
		}
	}
}
