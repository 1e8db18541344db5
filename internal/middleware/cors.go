// cors.go configures Cross-Origin Resource Sharing (CORS).
//
// CORS is needed when the upload form is served from a different origin
// than the API (e.g. a frontend dev server). Without CORS headers, browsers
// block the form from posting files or reading the download headers.
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns configured CORS middleware.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Disposition", "Content-Length",
			"X-Batch-ID", "X-Extraction-Warnings", "X-Extraction-Skipped",
			"X-RateLimit-Limit", "X-RateLimit-Remaining",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour, // Cache preflight responses
	})
}
