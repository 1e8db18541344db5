// Package main is the entry point for the PDF Page Extractor API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shimizu-Technology/pdf-page-extractor/internal/config"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/database"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/middleware"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/router"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/services/batch"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/services/pdf"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 PDF Page Extractor %s starting...", Version)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, gin_mode=%s, max_files=%d, max_file_size=%dMB, concurrency=%d",
		cfg.Port, cfg.GinMode, cfg.MaxFiles, cfg.MaxFileSize>>20, cfg.BatchConcurrency)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Step 2: Connect to Database (optional; only extraction history needs it)
	var db *database.DB
	if cfg.DatabaseURL != "" {
		db, err = database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("✅ Database connected")

		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			log.Fatalf("❌ Migration failed: %v", err)
		}
	} else {
		log.Println("⚠️  No DATABASE_URL set (extraction history disabled)")
	}

	// Step 3: Create Services
	processor := batch.NewProcessor(&pdf.Extractor{}, cfg.BatchConcurrency)

	if cfg.JWTSecret != "" {
		log.Println("✅ JWT authentication enabled for /api/v1/pdf")
	} else {
		log.Println("⚠️  No JWT_SECRET set (PDF endpoints are open; set JWT_SECRET in production)")
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()
	if cfg.RateLimit > 0 {
		log.Printf("✅ Rate limit: %d requests/hour per client", cfg.RateLimit)
	}

	// Step 4: Setup HTTP Router
	r := router.Setup(db, processor, rateLimiter, cfg, Version)

	// Step 5: Start the HTTP Server
	// Uploads of several large PDFs take a while to arrive, so the read
	// timeout is longer than a JSON API would need.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 6: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server stopped. Goodbye!")
}
