package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todo-sentiment/internal/domain"
	"todo-sentiment/internal/repository"
)

var usersSchema = map[Dialect][]string{
	SQLite: {`
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	added_on DATETIME NOT NULL,
	updated_on DATETIME NULL
);`},
	Postgres: {`
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	added_on TIMESTAMPTZ NOT NULL,
	updated_on TIMESTAMPTZ NULL
);`},
}

const selectUserColumns = `SELECT id, name, email, password_hash, added_on, updated_on FROM users`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if err := r.db.migrate(ctx, usersSchema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	if user.AddedOn.IsZero() {
		user.AddedOn = time.Now().UTC()
	}

	var id int64
	err := r.db.queryRow(ctx, `
INSERT INTO users (name, email, password_hash, added_on, updated_on)
VALUES (?, ?, ?, ?, ?)
RETURNING id`,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.AddedOn.UTC(),
		nullTime(user.UpdatedOn),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user %s: %w", user.Email, repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.queryRow(ctx, selectUserColumns+` WHERE email = ?`, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.queryRow(ctx, selectUserColumns+` WHERE id = ?`, id))
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.query(ctx, selectUserColumns+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	res, err := r.db.exec(ctx, `
UPDATE users
SET name=?, email=?, updated_on=?
WHERE id=?`,
		user.Name,
		user.Email,
		nullTime(user.UpdatedOn),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user %d: %w", user.ID, repository.ErrDuplicate)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res, "user", user.ID)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.exec(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(res, "user", id)
}

func (r *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.exec(ctx, `DELETE FROM users`)
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("users delete rows affected: %w", err)
	}
	return n, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user      domain.User
		addedOn   time.Time
		updatedOn sql.NullTime
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&addedOn,
		&updatedOn,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	user.AddedOn = addedOn.UTC()
	user.UpdatedOn = timePtr(updatedOn)
	return &user, nil
}

func expectAffected(res sql.Result, entity string, id int64) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if aff == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, repository.ErrNotFound)
	}
	return nil
}
