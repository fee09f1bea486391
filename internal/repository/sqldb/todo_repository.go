package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"todo-sentiment/internal/domain"
	"todo-sentiment/internal/repository"
)

var todosSchema = map[Dialect][]string{
	SQLite: {
		`
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	confidence REAL NOT NULL DEFAULT 0,
	deadline DATETIME NULL,
	added_on DATETIME NULL,
	updated_on DATETIME NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_todos_user_id ON todos(user_id);`,
	},
	Postgres: {
		`
CREATE TABLE IF NOT EXISTS todos (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	deadline TIMESTAMPTZ NULL,
	added_on TIMESTAMPTZ NULL,
	updated_on TIMESTAMPTZ NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_todos_user_id ON todos(user_id);`,
	},
}

const selectTodoColumns = `
SELECT id, user_id, name, description, category, color, status, sentiment, confidence, deadline, added_on, updated_on
FROM todos`

type TodoRepository struct {
	db *DB
}

func NewTodoRepository(db *DB) repository.TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Init(ctx context.Context) error {
	if err := r.db.migrate(ctx, todosSchema); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}

func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) (int64, error) {
	var id int64
	err := r.db.queryRow(ctx, `
INSERT INTO todos (user_id, name, description, category, color, status, sentiment, confidence, deadline, added_on, updated_on)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`,
		todo.UserID,
		todo.Name,
		todo.Description,
		todo.Category,
		todo.Color,
		string(todo.Status),
		string(todo.Sentiment),
		todo.Confidence,
		nullTime(todo.Deadline),
		nullTime(todo.AddedOn),
		nullTime(todo.UpdatedOn),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}

	todo.ID = id
	return id, nil
}

func (r *TodoRepository) Get(ctx context.Context, id int64) (*domain.Todo, error) {
	return scanTodo(r.db.queryRow(ctx, selectTodoColumns+`
WHERE id=?`, id))
}

func (r *TodoRepository) List(ctx context.Context) ([]domain.Todo, error) {
	return r.list(ctx, selectTodoColumns+`
ORDER BY id ASC`)
}

func (r *TodoRepository) Filter(ctx context.Context, filter domain.TodoFilter) ([]domain.Todo, error) {
	conds := []string{"user_id = ?"}
	args := []any{filter.UserID}

	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Sentiment != "" {
		conds = append(conds, "sentiment = ?")
		args = append(args, filter.Sentiment)
	}

	// Todos without a deadline sort last in both directions on every dialect.
	order := "id ASC"
	switch filter.SortOrder {
	case domain.SortAsc:
		order = "deadline IS NULL, deadline ASC, id ASC"
	case domain.SortDesc:
		order = "deadline IS NULL, deadline DESC, id ASC"
	}

	query := fmt.Sprintf(`%s
WHERE %s
ORDER BY %s`, selectTodoColumns, strings.Join(conds, " AND "), order)

	return r.list(ctx, query, args...)
}

func (r *TodoRepository) list(ctx context.Context, query string, args ...any) ([]domain.Todo, error) {
	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}

	return todos, rows.Err()
}

func (r *TodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	res, err := r.db.exec(ctx, `
UPDATE todos
SET name=?, description=?, category=?, color=?, status=?, sentiment=?, confidence=?, deadline=?, updated_on=?
WHERE id=?`,
		todo.Name,
		todo.Description,
		todo.Category,
		todo.Color,
		string(todo.Status),
		string(todo.Sentiment),
		todo.Confidence,
		nullTime(todo.Deadline),
		nullTime(todo.UpdatedOn),
		todo.ID,
	)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return expectAffected(res, "todo", todo.ID)
}

func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.exec(ctx, `DELETE FROM todos WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return expectAffected(res, "todo", id)
}

func (r *TodoRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.exec(ctx, `DELETE FROM todos`)
	if err != nil {
		return 0, fmt.Errorf("delete todos: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("todos delete rows affected: %w", err)
	}
	return n, nil
}

// markCompletedChunk bounds the ids bound into one UPDATE, keeping every
// statement well under sqlite's host parameter limit.
const markCompletedChunk = 500

func (r *TodoRepository) MarkCompleted(ctx context.Context, ids []int64, ownerID int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var total int64
	for start := 0; start < len(ids); start += markCompletedChunk {
		chunk := ids[start:min(start+markCompletedChunk, len(ids))]

		args := make([]any, 0, len(chunk)+3)
		args = append(args, string(domain.TodoStatusCompleted), now)
		for _, id := range chunk {
			args = append(args, id)
		}

		query := fmt.Sprintf(`
UPDATE todos
SET status=?, updated_on=?
WHERE id IN (%s)`, placeholders(len(chunk)))
		if ownerID != 0 {
			query += ` AND user_id=?`
			args = append(args, ownerID)
		}

		res, err := tx.ExecContext(ctx, r.db.rebind(query), args...)
		if err != nil {
			return 0, fmt.Errorf("mark todos completed: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("mark completed rows affected: %w", err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit mark completed: %w", err)
	}
	return total, nil
}

func scanTodo(scanner interface {
	Scan(dest ...any) error
}) (*domain.Todo, error) {
	var (
		todo      domain.Todo
		status    string
		sentiment string
		deadline  sql.NullTime
		addedOn   sql.NullTime
		updatedOn sql.NullTime
	)

	if err := scanner.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Name,
		&todo.Description,
		&todo.Category,
		&todo.Color,
		&status,
		&sentiment,
		&todo.Confidence,
		&deadline,
		&addedOn,
		&updatedOn,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("todo: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan todo: %w", err)
	}

	todo.Status = domain.TodoStatus(status)
	todo.Sentiment = domain.Sentiment(sentiment)
	todo.Deadline = timePtr(deadline)
	todo.AddedOn = timePtr(addedOn)
	todo.UpdatedOn = timePtr(updatedOn)
	return &todo, nil
}
