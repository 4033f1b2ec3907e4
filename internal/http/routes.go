package http

import (
	"net/http"
	"path/filepath"

	"todo_webapp/internal/config"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// RegisterRoutes wires all endpoints and the static client onto the engine.
func RegisterRoutes(r *gin.Engine, svc *service.TodoService, db *pgxpool.Pool, cacheClient *redis.Client, cfg *config.Config) {
	h := handlers.NewHandler(svc)
	healthHandler := handlers.NewHealthHandler(db, cacheClient)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	todos := r.Group("/todos")
	todos.Use(middleware.RateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	{
		todos.GET("", h.ListTodos)
		todos.POST("", h.CreateTodo)
		todos.PUT("/:id", h.UpdateTodo)
		todos.DELETE("/:id", h.DeleteTodo)
	}

	// Frontend static files
	r.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))
	r.StaticFS("/assets", gin.Dir(cfg.StaticDir, false))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}
