package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"library-backend/internal/api"
	"library-backend/internal/database"
	"library-backend/internal/notify"
	"library-backend/internal/sso"
)

func main() {
	// Get database path from environment or default
	dbPath := os.Getenv("LIBRARY_DB_PATH")
	if dbPath == "" {
		// Default to current directory for development
		dbPath = "./library.db"
	}

	// Ensure absolute path
	if !filepath.IsAbs(dbPath) {
		cwd, _ := os.Getwd()
		dbPath = filepath.Join(cwd, dbPath)
	}

	// Initialize database
	log.Printf("Initializing database at %s", dbPath)
	store, err := database.Open(database.Config{Path: dbPath})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Notification hub
	hub := notify.NewHub()
	go hub.Run()

	// Optional institutional SSO
	var ssoClient *sso.Client
	if cfg, ok := sso.ConfigFromEnv(); ok {
		ssoClient, err = sso.New(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to initialize SSO provider: %v", err)
		}
		log.Printf("SSO login enabled via %s", cfg.IssuerURL)
	}

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	corsOrigin := os.Getenv("LIBRARY_CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "http://localhost:3000"
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Session-ID"},
		AllowCredentials: true,
	}))

	// API routes
	apiGroup := e.Group("/api")
	api.RegisterRoutes(apiGroup, store, hub, ssoClient)

	// Get port from environment or default
	port := os.Getenv("LIBRARY_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting library backend on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
