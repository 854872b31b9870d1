package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/ateliermori/commission-api/internal/config"
	"github.com/ateliermori/commission-api/internal/database"
	"github.com/ateliermori/commission-api/internal/feed"
	"github.com/ateliermori/commission-api/internal/gallery"
	"github.com/ateliermori/commission-api/internal/handler"
	"github.com/ateliermori/commission-api/internal/middleware"
	"github.com/ateliermori/commission-api/internal/queue"
	"github.com/ateliermori/commission-api/internal/repository"
	"github.com/ateliermori/commission-api/internal/router"
)

func main() {
	// Load .env if present; real environments set variables directly.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the gallery response cache and the rate limiter.  A nil
	// client disables both; the API itself keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// The hub fans new messages out to open streams on this instance; the
	// broker consumer feeds it events posted on other instances.
	hub := feed.NewHub()
	go func() {
		if err := queue.StartMessageConsumer(hub); err != nil {
			log.Printf("message consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	commissions := repository.NewCommissionRepo(db)
	messages := repository.NewMessageRepo(db)
	measurements := repository.NewMeasurementRepo(db)
	preferences := repository.NewPreferencesRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	measurementH := handler.NewMeasurementHandler(measurements, preferences, tokens)
	preferencesH := handler.NewPreferencesHandler(preferences)
	commissionH := handler.NewCommissionHandler(commissions)
	adminH := handler.NewAdminCommissionHandler(commissions)
	messageH := handler.NewMessageHandler(messages, commissions, hub)

	// The gallery is optional: without an upstream URL its routes are
	// simply not registered.
	var galleryH *handler.GalleryHandler
	if cfg.GalleryBaseURL != "" {
		galleryH = handler.NewGalleryHandler(gallery.NewClient(cfg.GalleryBaseURL, cfg.GalleryToken))
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e, galleryH, rdb)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterClient(e, cfg.JWTSecret, measurementH, preferencesH, commissionH, messageH)
	router.RegisterAdmin(e, cfg.JWTSecret, adminH)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
