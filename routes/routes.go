package routes

import (
	"net/http"
	"time"

	userRepo "calendo/database/repository/user"
	"calendo/handlers"
	"calendo/middleware"
	"calendo/models"
	"calendo/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAppointmentRoutes registers slot generation, booking, reschedule
// and reassignment endpoints.
func RegisterAppointmentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, users userRepo.UserRepository) {
	auth := middleware.JWTAuthMiddleware(users, false)
	staff := middleware.RestrictTo(models.RoleAdmin, models.RoleWorker)

	appointments := api.Group("/appointments")
	{
		appointments.GET("", auth, hb.ListAppointmentsHandler)
		appointments.GET("/:id", auth, hb.GetAppointmentHandler)

		// Guests may book; a valid token attaches the caller as the client.
		// Moving a booking needs a token, checked by the handler.
		appointments.PATCH("/:id", middleware.JWTAuthMiddleware(users, true), hb.PatchAppointmentHandler)

		appointments.POST("", auth, staff, hb.GenerateSlotsHandler)
		appointments.PUT("/:id", auth, staff, hb.UpdateAppointmentHandler)
		appointments.DELETE("/:id", auth, staff, hb.DeleteAppointmentHandler)
		appointments.PATCH("/reassign/:id", auth, staff, hb.ReassignAppointmentHandler)
	}
}

// RegisterEventRoutes registers internal event CRUD for staff.
func RegisterEventRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, users userRepo.UserRepository) {
	events := api.Group("/internal-events")
	{
		events.Use(middleware.JWTAuthMiddleware(users, false))
		events.Use(middleware.RestrictTo(models.RoleAdmin, models.RoleWorker))
		events.GET("", hb.ListEventsHandler)
		events.GET("/:id", hb.GetEventHandler)
		events.POST("", hb.CreateEventHandler)
		events.PATCH("/:id", hb.UpdateEventHandler)
		events.DELETE("/:id", hb.DeleteEventHandler)
	}
}

// RegisterUserRoutes registers directory reads and admin user management.
func RegisterUserRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, users userRepo.UserRepository) {
	group := api.Group("/users")
	{
		group.Use(middleware.JWTAuthMiddleware(users, false))
		group.GET("", hb.GetAllUsersHandler)
		group.GET("/workers", hb.GetWorkersHandler)
		group.GET("/:id", hb.GetUserByIDHandler)

		admin := group.Group("")
		admin.Use(middleware.RestrictTo(models.RoleAdmin))
		admin.POST("", hb.CreateUserHandler)
		admin.PATCH("/:id", hb.UpdateUserHandler)
		admin.DELETE("/:id", hb.DeleteUserHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(api *gin.RouterGroup) {
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"message":      "Hi, I'm Calendo",
			"dependencies": utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, users userRepo.UserRepository) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api/v1")
	RegisterHealthRoute(api)
	RegisterAppointmentRoutes(api, hb, users)
	RegisterEventRoutes(api, hb, users)
	RegisterUserRoutes(api, hb, users)
}
