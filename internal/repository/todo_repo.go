package repository

import (
	"context"
	"errors"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTodoNotFound = errors.New("todo not found")

type TodoRepository struct {
	db *pgxpool.Pool
}

func NewTodoRepository(db *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{db: db}
}

// List returns all todos, most recently created first.
func (r *TodoRepository) List(ctx context.Context) ([]*domain.Todo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, completed, created_at, updated_at
		 FROM todos
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Todo
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

// Create inserts a new row and fills in the server-assigned fields.
func (r *TodoRepository) Create(ctx context.Context, t *domain.Todo) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO todos (title, description, completed)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.Description, t.Completed,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update replaces title, description and completed on the matching row and
// refreshes updated_at. Not-found is detected via the affected-row count
// rather than a pre-check query.
func (r *TodoRepository) Update(ctx context.Context, t *domain.Todo) error {
	result, err := r.db.Exec(ctx,
		`UPDATE todos
		 SET title = $1, description = $2, completed = $3, updated_at = now()
		 WHERE id = $4`,
		t.Title, t.Description, t.Completed, t.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// Delete removes the matching row.
func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}
