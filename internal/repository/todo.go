package repository

import (
	"context"

	"todo-sentiment/internal/domain"
)

// TodoRepository exposes persistence operations for Todo rows.
type TodoRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, todo *domain.Todo) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Todo, error)
	List(ctx context.Context) ([]domain.Todo, error)
	Filter(ctx context.Context, filter domain.TodoFilter) ([]domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	// MarkCompleted sets status=completed on every listed id. When ownerID is
	// non-zero only rows owned by that user are touched.
	MarkCompleted(ctx context.Context, ids []int64, ownerID int64) (int64, error)
}
