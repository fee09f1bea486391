package sqldb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"todo-sentiment/internal/domain"
	"todo-sentiment/internal/repository"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(context.Background(), "sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newRepos(t *testing.T) (*UserRepository, *TodoRepository) {
	t.Helper()
	db := openTestDB(t)
	users := NewUserRepository(db).(*UserRepository)
	todos := NewTodoRepository(db).(*TodoRepository)
	ctx := context.Background()
	if err := users.Init(ctx); err != nil {
		t.Fatalf("init users: %v", err)
	}
	if err := todos.Init(ctx); err != nil {
		t.Fatalf("init todos: %v", err)
	}
	return users, todos
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: Postgres}
	got := pg.rebind("SELECT * FROM t WHERE a = ? AND b IN (?,?)")
	want := "SELECT * FROM t WHERE a = $1 AND b IN ($2,$3)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	lite := &DB{dialect: SQLite}
	if q := lite.rebind("a = ?"); q != "a = ?" {
		t.Errorf("sqlite query should be unchanged, got %q", q)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestUserRepository_CRUD(t *testing.T) {
	users, _ := newRepos(t)
	ctx := context.Background()

	u := &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	id, err := users.Create(ctx, u)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 || u.ID != id {
		t.Fatalf("expected generated id, got %d / %d", id, u.ID)
	}

	got, err := users.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.Name != "Ada" || got.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", got)
	}
	if got.UpdatedOn != nil {
		t.Errorf("expected nil updated_on, got %v", got.UpdatedOn)
	}

	now := time.Now().UTC()
	got.Name = "Ada L."
	got.UpdatedOn = &now
	if err := users.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	byID, err := users.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Name != "Ada L." || byID.UpdatedOn == nil {
		t.Errorf("update not persisted: %+v", byID)
	}

	if err := users.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := users.GetByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := users.Delete(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	users, _ := newRepos(t)
	ctx := context.Background()

	if _, err := users.Create(ctx, &domain.User{Name: "a", Email: "dup@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := users.Create(ctx, &domain.User{Name: "b", Email: "dup@example.com", PasswordHash: "y"})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	all, err := users.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 user, got %d", len(all))
	}
}

func TestUserRepository_DeleteAll(t *testing.T) {
	users, _ := newRepos(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u := &domain.User{Name: "u", Email: fmt.Sprintf("u%d@example.com", i), PasswordHash: "x"}
		if _, err := users.Create(ctx, u); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	n, err := users.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 deleted, got %d", n)
	}
	all, _ := users.List(ctx)
	if len(all) != 0 {
		t.Errorf("expected empty list, got %d", len(all))
	}
}

func seedTodo(t *testing.T, repo *TodoRepository, todo domain.Todo) int64 {
	t.Helper()
	if todo.Status == "" {
		todo.Status = domain.TodoStatusPending
	}
	if todo.Sentiment == "" {
		todo.Sentiment = domain.SentimentNeutral
	}
	id, err := repo.Create(context.Background(), &todo)
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	return id
}

func TestTodoRepository_Filter(t *testing.T) {
	_, todos := newRepos(t)
	ctx := context.Background()

	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	seedTodo(t, todos, domain.Todo{UserID: 1, Name: "a", Category: "work", Deadline: &late, Sentiment: domain.SentimentPositive})
	seedTodo(t, todos, domain.Todo{UserID: 1, Name: "b", Category: "work", Deadline: &early})
	seedTodo(t, todos, domain.Todo{UserID: 1, Name: "c", Category: "home", Status: domain.TodoStatusCompleted})
	seedTodo(t, todos, domain.Todo{UserID: 2, Name: "d", Category: "work"})

	tests := []struct {
		name   string
		filter domain.TodoFilter
		want   []string
	}{
		{"owner scope only", domain.TodoFilter{UserID: 1}, []string{"a", "b", "c"}},
		{"category", domain.TodoFilter{UserID: 1, Category: "work"}, []string{"a", "b"}},
		{"status", domain.TodoFilter{UserID: 1, Status: "completed"}, []string{"c"}},
		{"sentiment", domain.TodoFilter{UserID: 1, Sentiment: "POSITIVE"}, []string{"a"}},
		{"conjunctive", domain.TodoFilter{UserID: 1, Category: "home", Status: "pending"}, nil},
		{"sort asc", domain.TodoFilter{UserID: 1, Category: "work", SortOrder: domain.SortAsc}, []string{"b", "a"}},
		{"sort desc", domain.TodoFilter{UserID: 1, Category: "work", SortOrder: domain.SortDesc}, []string{"a", "b"}},
		{"other owner", domain.TodoFilter{UserID: 2}, []string{"d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := todos.Filter(ctx, tt.filter)
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d todos, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i].Name != tt.want[i] {
					t.Errorf("position %d: expected %q, got %q", i, tt.want[i], got[i].Name)
				}
			}
		})
	}
}

func TestTodoRepository_FilterSortsMissingDeadlineLast(t *testing.T) {
	_, todos := newRepos(t)
	ctx := context.Background()

	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	seedTodo(t, todos, domain.Todo{UserID: 1, Name: "open-ended"})
	seedTodo(t, todos, domain.Todo{UserID: 1, Name: "late", Deadline: &late})
	seedTodo(t, todos, domain.Todo{UserID: 1, Name: "early", Deadline: &early})

	tests := []struct {
		order domain.SortOrder
		want  []string
	}{
		{domain.SortAsc, []string{"early", "late", "open-ended"}},
		{domain.SortDesc, []string{"late", "early", "open-ended"}},
		{domain.SortNone, []string{"open-ended", "late", "early"}},
	}
	for _, tt := range tests {
		got, err := todos.Filter(ctx, domain.TodoFilter{UserID: 1, SortOrder: tt.order})
		if err != nil {
			t.Fatalf("filter %q: %v", tt.order, err)
		}
		names := make([]string, len(got))
		for i := range got {
			names[i] = got[i].Name
		}
		if strings.Join(names, ",") != strings.Join(tt.want, ",") {
			t.Errorf("sort %q: expected %v, got %v", tt.order, tt.want, names)
		}
	}
}

func TestTodoRepository_UpdateAndDelete(t *testing.T) {
	_, todos := newRepos(t)
	ctx := context.Background()

	id := seedTodo(t, todos, domain.Todo{UserID: 1, Name: "write", Description: "draft"})

	todo, err := todos.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	now := time.Now().UTC()
	todo.Name = "rewrite"
	todo.Confidence = 0.5
	todo.Sentiment = domain.SentimentPositive
	todo.UpdatedOn = &now
	if err := todos.Update(ctx, todo); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := todos.Get(ctx, id)
	if got.Name != "rewrite" || got.Confidence != 0.5 || got.Sentiment != domain.SentimentPositive || got.UpdatedOn == nil {
		t.Errorf("update not persisted: %+v", got)
	}

	missing := &domain.Todo{ID: 999, Status: domain.TodoStatusPending, Sentiment: domain.SentimentNeutral}
	if err := todos.Update(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := todos.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := todos.Get(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTodoRepository_MarkCompleted(t *testing.T) {
	_, todos := newRepos(t)
	ctx := context.Background()

	a := seedTodo(t, todos, domain.Todo{UserID: 1, Name: "a"})
	b := seedTodo(t, todos, domain.Todo{UserID: 2, Name: "b"})
	c := seedTodo(t, todos, domain.Todo{UserID: 1, Name: "c"})

	n, err := todos.MarkCompleted(ctx, []int64{a, b, 999}, 0)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows updated, got %d", n)
	}

	for id, want := range map[int64]domain.TodoStatus{a: domain.TodoStatusCompleted, b: domain.TodoStatusCompleted, c: domain.TodoStatusPending} {
		got, _ := todos.Get(ctx, id)
		if got.Status != want {
			t.Errorf("todo %d: expected %s, got %s", id, want, got.Status)
		}
	}

	n, err = todos.MarkCompleted(ctx, []int64{c, b}, 2)
	if err != nil {
		t.Fatalf("mark scoped: %v", err)
	}
	if n != 1 {
		t.Errorf("expected only owned row updated, got %d", n)
	}

	if n, err := todos.MarkCompleted(ctx, nil, 0); err != nil || n != 0 {
		t.Errorf("expected no-op for empty ids, got %d, %v", n, err)
	}
}

func TestTodoRepository_MarkCompletedManyIDs(t *testing.T) {
	_, todos := newRepos(t)
	ctx := context.Background()

	first := seedTodo(t, todos, domain.Todo{UserID: 1, Name: "first"})
	last := seedTodo(t, todos, domain.Todo{UserID: 1, Name: "last"})

	// More ids than sqlite accepts as parameters of a single statement.
	ids := make([]int64, 0, 40000)
	ids = append(ids, first)
	for i := int64(0); i < 39998; i++ {
		ids = append(ids, 100000+i)
	}
	ids = append(ids, last)

	n, err := todos.MarkCompleted(ctx, ids, 0)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows updated, got %d", n)
	}
	for _, id := range []int64{first, last} {
		got, _ := todos.Get(ctx, id)
		if got.Status != domain.TodoStatusCompleted {
			t.Errorf("todo %d: expected completed, got %s", id, got.Status)
		}
	}
}

func TestTodoRepository_DeleteAll(t *testing.T) {
	_, todos := newRepos(t)
	ctx := context.Background()

	seedTodo(t, todos, domain.Todo{UserID: 1})
	seedTodo(t, todos, domain.Todo{UserID: 2})

	if _, err := todos.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	all, err := todos.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty table, got %d rows", len(all))
	}
}
