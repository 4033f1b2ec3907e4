package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"todo_webapp/internal/cache"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
)

type fakeStore struct {
	todos     []*domain.Todo
	nextID    int64
	listCalls int
	listErr   error
}

func (s *fakeStore) List(ctx context.Context) ([]*domain.Todo, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.todos, nil
}

func (s *fakeStore) Create(ctx context.Context, t *domain.Todo) error {
	s.nextID++
	t.ID = s.nextID
	s.todos = append([]*domain.Todo{t}, s.todos...)
	return nil
}

func (s *fakeStore) Update(ctx context.Context, t *domain.Todo) error {
	for i, existing := range s.todos {
		if existing.ID == t.ID {
			s.todos[i] = t
			return nil
		}
	}
	return repository.ErrTodoNotFound
}

func (s *fakeStore) Delete(ctx context.Context, id int64) error {
	for i, existing := range s.todos {
		if existing.ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return nil
		}
	}
	return repository.ErrTodoNotFound
}

type fakeCache struct {
	payload       []byte
	unavailable   bool
	sets          int
	invalidations int
}

func (c *fakeCache) Get(ctx context.Context) ([]byte, error) {
	if c.unavailable {
		return nil, cache.ErrUnavailable
	}
	if c.payload == nil {
		return nil, cache.ErrMiss
	}
	return c.payload, nil
}

func (c *fakeCache) Set(ctx context.Context, payload []byte) error {
	if c.unavailable {
		return cache.ErrUnavailable
	}
	c.sets++
	c.payload = payload
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	if c.unavailable {
		return cache.ErrUnavailable
	}
	c.invalidations++
	c.payload = nil
	return nil
}

func TestListCacheHit(t *testing.T) {
	cached := []*domain.Todo{{ID: 7, Title: "cached"}}
	payload, _ := json.Marshal(cached)

	store := &fakeStore{}
	fc := &fakeCache{payload: payload}
	svc := NewTodoService(store, fc)

	todos, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listCalls != 0 {
		t.Fatalf("expected store untouched on cache hit, got %d calls", store.listCalls)
	}
	if len(todos) != 1 || todos[0].Title != "cached" {
		t.Fatalf("unexpected todos: %+v", todos)
	}
}

func TestListCacheMissPopulates(t *testing.T) {
	store := &fakeStore{todos: []*domain.Todo{{ID: 1, Title: "from db"}}}
	fc := &fakeCache{}
	svc := NewTodoService(store, fc)

	todos, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("expected one store query, got %d", store.listCalls)
	}
	if fc.sets != 1 {
		t.Fatalf("expected cache population after miss, got %d sets", fc.sets)
	}
	if len(todos) != 1 || todos[0].Title != "from db" {
		t.Fatalf("unexpected todos: %+v", todos)
	}

	// second read should now be a hit
	_, err = svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("expected second read served from cache, store calls = %d", store.listCalls)
	}
}

func TestListCacheUnavailableFallsBack(t *testing.T) {
	store := &fakeStore{todos: []*domain.Todo{{ID: 1, Title: "still works"}}}
	fc := &fakeCache{unavailable: true}
	svc := NewTodoService(store, fc)

	todos, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("expected graceful fallback, got: %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "still works" {
		t.Fatalf("unexpected todos: %+v", todos)
	}
}

func TestListStoreFailure(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection refused")}
	svc := NewTodoService(store, &fakeCache{})

	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected error when store is unreachable")
	}
}

func TestListCorruptCachePayload(t *testing.T) {
	store := &fakeStore{todos: []*domain.Todo{{ID: 1, Title: "ok"}}}
	fc := &fakeCache{payload: []byte("{not json")}
	svc := NewTodoService(store, fc)

	todos, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatal("expected fallback to store on undecodable payload")
	}
	if len(todos) != 1 {
		t.Fatalf("unexpected todos: %+v", todos)
	}
}

func TestCreateTrimsAndInvalidates(t *testing.T) {
	store := &fakeStore{}
	fc := &fakeCache{payload: []byte("[]")}
	svc := NewTodoService(store, fc)

	todo, err := svc.Create(context.Background(), "  Buy milk  ", "  2%  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todo.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if todo.Title != "Buy milk" || todo.Description != "2%" {
		t.Fatalf("expected trimmed fields, got %q / %q", todo.Title, todo.Description)
	}
	if todo.Completed {
		t.Fatal("new todos must start incomplete")
	}
	if fc.invalidations != 1 {
		t.Fatalf("expected one cache invalidation, got %d", fc.invalidations)
	}
}

func TestCreateEmptyTitleRejected(t *testing.T) {
	store := &fakeStore{}
	fc := &fakeCache{}
	svc := NewTodoService(store, fc)

	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Create(context.Background(), title, ""); !errors.Is(err, ErrEmptyTitle) {
			t.Fatalf("title %q: expected ErrEmptyTitle, got %v", title, err)
		}
	}
	if len(store.todos) != 0 {
		t.Fatal("rejected create must not insert a row")
	}
	if fc.invalidations != 0 {
		t.Fatal("rejected create must not invalidate the cache")
	}
}

func TestUpdateValidatesLikeCreate(t *testing.T) {
	store := &fakeStore{todos: []*domain.Todo{{ID: 1, Title: "old"}}}
	fc := &fakeCache{}
	svc := NewTodoService(store, fc)

	if err := svc.Update(context.Background(), 1, "   ", "", true); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if store.todos[0].Title != "old" {
		t.Fatal("rejected update must not mutate the row")
	}
}

func TestUpdateNotFound(t *testing.T) {
	store := &fakeStore{}
	fc := &fakeCache{payload: []byte("[]")}
	svc := NewTodoService(store, fc)

	err := svc.Update(context.Background(), 42, "title", "", true)
	if !errors.Is(err, repository.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
	if fc.invalidations != 0 {
		t.Fatal("failed update must not invalidate the cache")
	}
}

func TestUpdateInvalidatesOnSuccess(t *testing.T) {
	store := &fakeStore{todos: []*domain.Todo{{ID: 1, Title: "old"}}, nextID: 1}
	fc := &fakeCache{payload: []byte("[]")}
	svc := NewTodoService(store, fc)

	if err := svc.Update(context.Background(), 1, "new", "desc", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.invalidations != 1 {
		t.Fatalf("expected one invalidation, got %d", fc.invalidations)
	}
	if store.todos[0].Title != "new" || !store.todos[0].Completed {
		t.Fatalf("row not updated: %+v", store.todos[0])
	}
}

func TestDeleteNotFound(t *testing.T) {
	store := &fakeStore{}
	fc := &fakeCache{payload: []byte("[]")}
	svc := NewTodoService(store, fc)

	if err := svc.Delete(context.Background(), 42); !errors.Is(err, repository.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
	if fc.invalidations != 0 {
		t.Fatal("failed delete must not invalidate the cache")
	}
}

func TestMutationVisibleOnNextRead(t *testing.T) {
	store := &fakeStore{}
	fc := &fakeCache{}
	svc := NewTodoService(store, fc)

	// warm the cache with an empty list
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Create(context.Background(), "Buy milk", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	todos, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "Buy milk" {
		t.Fatalf("expected the new todo on the next read, got %+v", todos)
	}
}
