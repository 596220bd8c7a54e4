package di

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/travel-booking/pkg/config"
	"github.com/prohmpiriya/travel-booking/pkg/middleware"
	"github.com/prohmpiriya/travel-booking/pkg/telemetry"
)

// NewRouter wires middleware and routes onto a gin engine
func NewRouter(c *Container) *gin.Engine {
	cfg := c.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(c.Log))

	// Health check endpoints
	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	adminRole := cfg.JWT.AdminRole
	if adminRole == "" {
		adminRole = "admin"
	}
	requireAdmin := middleware.RequireRole(middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}, adminRole)

	// Passenger writes replay on retry; without Redis they run unguarded
	idempotent := func(ctx *gin.Context) { ctx.Next() }
	if c.Redis != nil {
		idempotent = middleware.Idempotency(middleware.IdempotencyConfig{
			Redis:         c.Redis,
			TTL:           24 * time.Hour,
			ProcessingTTL: 30 * time.Second,
			Logger:        c.Log,
		})
	} else {
		c.Log.Warn("redis not configured, passenger writes run without idempotency keys")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": cfg.App.Name,
			})
		})

		packages := v1.Group("/packages")
		{
			// Admin catalogue writes
			packages.POST("", requireAdmin, c.TravelHandler.CreatePackage)
			packages.POST("/:id/destinations", requireAdmin, c.TravelHandler.AddDestination)
			packages.POST("/:id/destinations/:destination_id/activities", requireAdmin, c.TravelHandler.AddActivity)

			// Passenger writes
			packages.POST("/:id/passengers", idempotent, c.TravelHandler.RegisterPassenger)
			packages.POST("/:id/passengers/:number/activities/:activity_id", idempotent, c.TravelHandler.SignUpForActivity)

			// Reads
			packages.GET("", c.TravelHandler.ListPackages)
			packages.GET("/:id", c.TravelHandler.GetPackage)
			packages.GET("/:id/itinerary", c.TravelHandler.GetItinerary)
			packages.GET("/:id/passengers", c.TravelHandler.GetPassengerList)
			packages.GET("/:id/passengers/:number", c.TravelHandler.GetPassengerDetails)
			packages.GET("/:id/activities/available", c.TravelHandler.GetAvailableActivities)
		}
	}

	return router
}
