// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-page-extractor/internal/config"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/database"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/handlers"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/middleware"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/services/batch"
)

// Setup creates and configures the Gin router with all routes.
// db may be nil, which disables extraction history.
func Setup(db *database.DB, proc *batch.Processor, rl *middleware.RateLimiter, cfg *config.Config, version string) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	h := handlers.NewHandler(db, proc, cfg, version)

	// --- Public Routes (no auth required) ---
	r.GET("/", h.ServeIndex)
	r.GET("/api/v1/health", h.HealthCheck)

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	// --- PDF routes: JWT when configured, then per-client rate limit ---
	// Order matters: the rate limiter keys on the subject JWTAuth sets.
	pdf := r.Group("/api/v1/pdf")
	pdf.Use(middleware.JWTAuth(cfg.JWTSecret))
	pdf.Use(rl.RateLimit())
	{
		pdf.POST("/inspect", h.InspectPDFs)
		pdf.POST("/extract", h.ExtractPages)

		// Extraction history (503 when no database is configured)
		pdf.GET("/extractions", h.ListExtractions)
		pdf.GET("/extractions/:id", h.GetExtraction)
	}

	return r
}
