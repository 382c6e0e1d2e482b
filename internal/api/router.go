package api

import (
	"github.com/gin-gonic/gin"
	"github.com/skillerhq/skiller/internal/api/handler"
	"github.com/skillerhq/skiller/internal/api/middleware"
	"github.com/skillerhq/skiller/internal/config"
	"github.com/skillerhq/skiller/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	pipeline *service.Pipeline,
	details *service.DetailService,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	jobsHandler := handler.NewJobsHandler(pipeline)
	skillsHandler := handler.NewSkillsHandler(pipeline)
	detailsHandler := handler.NewDetailsHandler(details)
	locationsHandler := handler.NewLocationsHandler(details)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Analysis
		v1.GET("/jobs", jobsHandler.Analyze)
		v1.GET("/skills", skillsHandler.Analyze)

		// Job details
		v1.GET("/jobs/:id", detailsHandler.Get)

		// Locations
		v1.GET("/locations", locationsHandler.List)
	}

	return r
}
