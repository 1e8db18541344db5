// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, Data, Status)
// - Middleware data (c.Get/c.Set)
//
// We group related handlers into a struct (Handler) that holds shared dependencies.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-page-extractor/internal/config"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/database"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/models"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/services/batch"
)

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Instead of global
// variables or service locators, we pass dependencies explicitly.
// This makes testing easy: tests build a Handler with a nil DB and a
// Processor around a fake extractor.
type Handler struct {
	DB        *database.DB // nil when extraction history is disabled
	Processor *batch.Processor
	Config    *config.Config
	Version   string
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(db *database.DB, proc *batch.Processor, cfg *config.Config, version string) *Handler {
	return &Handler{
		DB:        db,
		Processor: proc,
		Config:    cfg,
		Version:   version,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if h.DB != nil {
		dbStatus = "healthy"
		if err := h.DB.HealthCheck(c.Request.Context()); err != nil {
			dbStatus = "unhealthy: " + err.Error()
		}
	}

	auth := "disabled"
	if h.Config.JWTSecret != "" {
		auth = "jwt"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   "ok",
		Version:  h.Version,
		Database: dbStatus,
		Auth:     auth,
	})
}
