package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"todo_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AllowedOrigin string
	StaticDir     string

	DatabaseURL string
	DBPoolSize  int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	APIRateLimit  int
	APIRateWindow time.Duration

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment (and .env, if present).
// Database settings are required; the cache is optional.
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		// assemble from discrete vars
		host := os.Getenv("DB_HOST")
		user := os.Getenv("DB_USER")
		pass := os.Getenv("DB_PASSWORD")
		name := os.Getenv("DB_NAME")
		if host == "" || user == "" || name == "" {
			logger.Fatal("DATABASE_URL or DB_HOST/DB_USER/DB_NAME must be set")
		}
		dbPort := os.Getenv("DB_PORT")
		if dbPort == "" {
			dbPort = "5432"
		}
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, dbPort, name)
	}

	poolSize := 10
	if v := os.Getenv("DB_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			poolSize = n
		}
	}

	cacheTTL := 60 * time.Second
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cacheTTL = time.Duration(n) * time.Second
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	apiRateLimit := 100
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}

	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web"
	}

	return &Config{
		AppPort:       port,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		StaticDir:     staticDir,
		DatabaseURL:   dbURL,
		DBPoolSize:    poolSize,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		CacheTTL:      cacheTTL,
		APIRateLimit:  apiRateLimit,
		APIRateWindow: apiRateWindow,
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
	}
}
