package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// ListTodos returns all todos, most recently created first.
func (h *Handler) ListTodos(c *gin.Context) {
	todos, err := h.Todos.List(c.Request.Context())
	if err != nil {
		logger.Error("list todos failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todos"})
		return
	}
	c.JSON(http.StatusOK, todos)
}

// CreateTodo inserts a new todo. Title is required; description defaults to
// empty.
func (h *Handler) CreateTodo(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	todo, err := h.Todos.Create(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrEmptyTitle) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}
		logger.Error("create todo failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create todo"})
		return
	}

	c.JSON(http.StatusCreated, todo)
}

// UpdateTodo replaces title, description and completed on the matching row.
func (h *Handler) UpdateTodo(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo id"})
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Completed   bool   `json:"completed"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.Todos.Update(c.Request.Context(), id, req.Title, req.Description, req.Completed); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyTitle):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		case errors.Is(err, repository.ErrTodoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		default:
			logger.Error("update todo failed", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update todo"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Todo updated successfully"})
}

// DeleteTodo removes the matching row.
func (h *Handler) DeleteTodo(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo id"})
		return
	}

	if err := h.Todos.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		logger.Error("delete todo failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}
