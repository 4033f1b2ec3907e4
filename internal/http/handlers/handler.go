package handlers

import (
	"todo_webapp/internal/service"
)

type Handler struct {
	Todos *service.TodoService
}

func NewHandler(todos *service.TodoService) *Handler {
	return &Handler{Todos: todos}
}
