package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"todo_webapp/internal/cache"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

var ErrEmptyTitle = errors.New("title is required")

// TodoStore is the subset of the repository the service needs.
type TodoStore interface {
	List(ctx context.Context) ([]*domain.Todo, error)
	Create(ctx context.Context, t *domain.Todo) error
	Update(ctx context.Context, t *domain.Todo) error
	Delete(ctx context.Context, id int64) error
}

// ListCache is the point cache for the serialized full list. Get returns
// cache.ErrMiss on an absent key and cache.ErrUnavailable when the backend
// is down; callers never treat either as fatal.
type ListCache interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, payload []byte) error
	Invalidate(ctx context.Context) error
}

type TodoService struct {
	store TodoStore
	cache ListCache
}

func NewTodoService(store TodoStore, listCache ListCache) *TodoService {
	return &TodoService{store: store, cache: listCache}
}

// List implements cache-aside: serve the cached snapshot when present,
// otherwise query the store and repopulate. The cache is best-effort; only
// a store failure fails the read.
func (s *TodoService) List(ctx context.Context) ([]*domain.Todo, error) {
	payload, err := s.cache.Get(ctx)
	if err == nil {
		var todos []*domain.Todo
		if jsonErr := json.Unmarshal(payload, &todos); jsonErr == nil {
			return todos, nil
		}
		// corrupt payload: fall through to the store and overwrite below
		logger.Warn("discarding undecodable cache payload")
	}

	todos, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []*domain.Todo{}
	}

	if payload, jsonErr := json.Marshal(todos); jsonErr == nil {
		if setErr := s.cache.Set(ctx, payload); setErr != nil && !errors.Is(setErr, cache.ErrUnavailable) {
			logger.Warn("failed to populate list cache", "error", setErr)
		}
	}
	return todos, nil
}

// Create validates and normalizes the input, inserts the row, and
// invalidates the list cache.
func (s *TodoService) Create(ctx context.Context, title, description string) (*domain.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	t := &domain.Todo{
		Title:       title,
		Description: strings.TrimSpace(description),
		Completed:   false,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return t, nil
}

// Update replaces title, description and completed on the row. Input is
// trimmed and validated the same way as Create.
func (s *TodoService) Update(ctx context.Context, id int64, title, description string, completed bool) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	t := &domain.Todo{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(description),
		Completed:   completed,
	}
	if err := s.store.Update(ctx, t); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// Delete removes the row and invalidates the list cache.
func (s *TodoService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// invalidate drops the list key. A failure leaves a stale entry bounded by
// the TTL; the mutation itself already succeeded, so it is logged and
// counted rather than returned.
func (s *TodoService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil && !errors.Is(err, cache.ErrUnavailable) {
		logger.Warn("failed to invalidate list cache", "error", err)
	}
}
