package service

import (
	"context"
	"strings"
	"time"

	"todo-sentiment/internal/domain"
	"todo-sentiment/internal/repository"
	"todo-sentiment/internal/sentiment"
)

// Classifier derives a sentiment label from free text.
type Classifier interface {
	Classify(text string) sentiment.Result
}

// CreateTodoInput holds the client supplied fields of a new todo.
type CreateTodoInput struct {
	Name        string
	Description string
	Category    string
	Color       string
	Status      domain.TodoStatus
	Deadline    *time.Time
}

// TodoOptions tunes authorisation behaviour of the todo service.
type TodoOptions struct {
	// EnforceOwnership restricts update, delete and mark-as-done to the
	// caller's own todos. When false any authenticated user may touch any
	// todo by id.
	EnforceOwnership bool
}

// TodoService coordinates todo operations on behalf of an authenticated caller.
type TodoService interface {
	List(ctx context.Context, who domain.Identity, filter domain.TodoFilter) ([]domain.Todo, error)
	// Create stores a todo owned by who and returns every todo in the store.
	Create(ctx context.Context, who domain.Identity, in CreateTodoInput) ([]domain.Todo, error)
	Update(ctx context.Context, who domain.Identity, id int64, patch domain.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, who domain.Identity, id int64) error
	// DeleteAll removes the todos of every user.
	DeleteAll(ctx context.Context, who domain.Identity) (int64, error)
	// MarkAsDone completes the listed todos, ignoring unknown ids, and
	// returns the ids as submitted.
	MarkAsDone(ctx context.Context, who domain.Identity, ids []int64) ([]int64, error)
}

type todoService struct {
	todos      repository.TodoRepository
	classifier Classifier
	opts       TodoOptions
	now        func() time.Time
}

func NewTodoService(todos repository.TodoRepository, classifier Classifier, opts TodoOptions) TodoService {
	return &todoService{
		todos:      todos,
		classifier: classifier,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *todoService) List(ctx context.Context, who domain.Identity, filter domain.TodoFilter) ([]domain.Todo, error) {
	filter.UserID = who.UserID
	filter.SortOrder = normalizeSort(filter.SortOrder)
	return s.todos.Filter(ctx, filter)
}

func (s *todoService) Create(ctx context.Context, who domain.Identity, in CreateTodoInput) ([]domain.Todo, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalid("description is required")
	}
	if !in.Status.Valid() {
		return nil, invalid("status must be %q or %q", domain.TodoStatusPending, domain.TodoStatusCompleted)
	}

	now := s.now()
	todo := &domain.Todo{
		UserID:      who.UserID,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Color:       in.Color,
		Status:      in.Status,
		Deadline:    in.Deadline,
		AddedOn:     &now,
	}
	s.classify(todo)

	if _, err := s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	return s.todos.List(ctx)
}

func (s *todoService) Update(ctx context.Context, who domain.Identity, id int64, patch domain.TodoPatch) (*domain.Todo, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalid("status must be %q or %q", domain.TodoStatusPending, domain.TodoStatusCompleted)
	}

	todo, err := s.lookup(ctx, who, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(todo)
	s.classify(todo)
	now := s.now()
	todo.UpdatedOn = &now

	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, translate(err)
	}
	return todo, nil
}

func (s *todoService) Delete(ctx context.Context, who domain.Identity, id int64) error {
	if s.opts.EnforceOwnership {
		if _, err := s.lookup(ctx, who, id); err != nil {
			return err
		}
	}
	return translate(s.todos.Delete(ctx, id))
}

func (s *todoService) DeleteAll(ctx context.Context, _ domain.Identity) (int64, error) {
	return s.todos.DeleteAll(ctx)
}

func (s *todoService) MarkAsDone(ctx context.Context, who domain.Identity, ids []int64) ([]int64, error) {
	var owner int64
	if s.opts.EnforceOwnership {
		owner = who.UserID
	}
	if _, err := s.todos.MarkCompleted(ctx, ids, owner); err != nil {
		return nil, err
	}

	echoed := make([]int64, len(ids))
	copy(echoed, ids)
	return echoed, nil
}

// lookup loads a todo, hiding foreign todos when ownership is enforced.
func (s *todoService) lookup(ctx context.Context, who domain.Identity, id int64) (*domain.Todo, error) {
	todo, err := s.todos.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if s.opts.EnforceOwnership && todo.UserID != who.UserID {
		return nil, ErrNotFound
	}
	return todo, nil
}

// classify recomputes the derived sentiment fields from the description.
func (s *todoService) classify(todo *domain.Todo) {
	res := s.classifier.Classify(todo.Description)
	todo.Sentiment = res.Label
	todo.Confidence = res.Confidence
}

// normalizeSort treats only the exact value "asc" as ascending; any other
// non-empty value sorts descending.
func normalizeSort(order domain.SortOrder) domain.SortOrder {
	switch order {
	case domain.SortNone:
		return domain.SortNone
	case domain.SortAsc:
		return domain.SortAsc
	default:
		return domain.SortDesc
	}
}
