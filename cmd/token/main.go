// Command token mints a JWT for the PDF endpoints.
//
// Usage:
//
//	JWT_SECRET=... go run ./cmd/token -sub ops-team -ttl 720h
//
// The server only checks the signature and expiry, so anyone holding the
// secret can mint tokens. Keep it out of client code.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Shimizu-Technology/pdf-page-extractor/internal/config"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/middleware"
)

func main() {
	log.SetFlags(0)

	subject := flag.String("sub", "", "token subject (client identity used for rate limits and history)")
	ttl := flag.Duration("ttl", middleware.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	if *subject == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Reuse the server's config loading so CONFIG_FILE works here too.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET is not set")
	}

	token, err := middleware.GenerateJWT(*subject, cfg.JWTSecret, *ttl)
	if err != nil {
		log.Fatalf("❌ Failed to create token: %v", err)
	}

	log.Printf("🔑 Token for %q expires %s", *subject, time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println(token)
}
