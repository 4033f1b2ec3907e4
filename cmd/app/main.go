package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_webapp/internal/cache"
	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	httpServer "todo_webapp/internal/http"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	dbPool := db.Connect(cfg.DatabaseURL, cfg.DBPoolSize)

	cacheClient := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	listCache := cache.NewListCache(cacheClient, cfg.CacheTTL)
	middleware.InitRateLimiter(cacheClient)

	todoRepo := repository.NewTodoRepository(dbPool)
	todoService := service.NewTodoService(todoRepo, listCache)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
	}))
	r.Use(middleware.Metrics())

	// CORS (frontend may be served from a different origin)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || cfg.AllowedOrigin == origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, todoService, dbPool, cacheClient, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// release order: store pool first, then cache
	dbPool.Close()
	if cacheClient != nil {
		if err := cacheClient.Close(); err != nil {
			logger.Warn("cache close failed", "error", err)
		}
	}

	logger.Info("server exited")
}
