package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	DatabaseURL           string
	FrontendURL           string  // Frontend base URL (for short URLs and QR codes)
	RedisURL              string
	JWTSecret             string  // Secret key for JWT token signing
	JWTTTL                int     // JWT token expiration time in hours
	PurgeIntervalHours    int     // How often expired mappings are purged
	RateLimitRPS          float64 // Rate limit for general API endpoints (requests per second)
	RateLimitBurst        int     // Burst size for rate limiting
	RateLimitAuthRPS      float64 // Rate limit for auth endpoints (stricter)
	RateLimitAuthBurst    int     // Burst size for auth endpoints
	RateLimitShortenRPS   float64 // Rate limit for URL shortening (stricter)
	RateLimitShortenBurst int     // Burst size for URL shortening
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:3000"),
		RedisURL:              getEnv("REDIS_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		JWTTTL:                getEnvInt("JWT_TTL_HOURS", 24),
		PurgeIntervalHours:    getEnvInt("PURGE_INTERVAL_HOURS", 24),
		RateLimitRPS:          getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:        getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitAuthRPS:      getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst:    getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		RateLimitShortenRPS:   getEnvFloat("RATE_LIMIT_SHORTEN_RPS", 2),
		RateLimitShortenBurst: getEnvInt("RATE_LIMIT_SHORTEN_BURST", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
