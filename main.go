package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"linkly-be/internal/cache"
	"linkly-be/internal/config"
	"linkly-be/internal/controllers"
	"linkly-be/internal/database"
	"linkly-be/internal/jwt"
	"linkly-be/internal/middleware"
	"linkly-be/internal/repository"
	"linkly-be/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var cacheClient cache.Cache
	cacheClient, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis (%v). Continuing without cache.", err)
		cacheClient = nil
	} else {
		log.Println("Connected to Redis cache")
	}

	// Initialize repositories
	urlRepo := repository.NewURLRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTL)*time.Hour,
	)

	// Initialize services
	urlService := service.NewURLService(urlRepo, cacheClient)
	authService := service.NewAuthService(userRepo, jwtService)

	// Initialize controllers
	shortenerController := controllers.NewShortenerController(urlService, cfg.FrontendURL)
	authController := controllers.NewAuthController(authService)
	qrcodeController := controllers.NewQRCodeController(cfg.FrontendURL)

	// Purge mappings that outlived the retention window. The store also
	// filters them out of reads, so the loop only reclaims space.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.PurgeIntervalHours) * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			purged, err := urlRepo.PurgeExpired(context.Background())
			if err != nil {
				log.Printf("Warning: failed to purge expired mappings: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("Purged %d expired mappings", purged)
			}
		}
	}()

	// Initialize rate limiters
	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)
	shortenRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitShortenRPS), cfg.RateLimitShortenBurst)
	redirectRateLimiter := middleware.NewRateLimiter(rate.Limit(30.0), 60) // More lenient for redirects (30 req/s, burst 60)

	// Create a Gin router
	router := gin.Default()

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Direct redirect endpoint with lenient rate limiting
	router.GET("/:shortId", redirectRateLimiter.LimitMiddleware(), shortenerController.RedirectToURL)

	// Auth routes with stricter rate limiting
	auth := router.Group("/api/auth")
	auth.Use(authRateLimiter.LimitMiddleware())
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// URL mapping routes with general rate limiting
	urls := router.Group("/api/urls")
	urls.Use(generalRateLimiter.LimitMiddleware())
	{
		// Public forms: usable anonymously, scoped to the caller when a
		// valid token is attached
		urls.POST("/shorten", shortenRateLimiter.LimitMiddleware(), middleware.OptionalAuthMiddleware(jwtService), shortenerController.CreateShortURL)
		urls.GET("", middleware.OptionalAuthMiddleware(jwtService), shortenerController.GetAllURLs)
		urls.DELETE("/:id", middleware.OptionalAuthMiddleware(jwtService), shortenerController.DeleteURL)

		// Short links resolve globally regardless of listing privacy
		urls.GET("/:shortId", redirectRateLimiter.LimitMiddleware(), shortenerController.ResolveShortURL)

		// Gated forms: require a valid identity
		protected := urls.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService))
		{
			protected.POST("/shorten/private", shortenRateLimiter.LimitMiddleware(), shortenerController.CreateShortURL)
			protected.GET("/user/urls", shortenerController.GetAllURLs)
			protected.DELETE("/user/:id", shortenerController.DeleteURL)
		}
	}

	// QR Code generation
	router.GET("/api/qrcode/:shortId", generalRateLimiter.LimitMiddleware(), qrcodeController.GenerateQRCode)

	// Start the server
	log.Printf("Server starting on http://localhost:%s", cfg.Port)
	router.Run(":" + cfg.Port)
}
