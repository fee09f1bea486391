package service

import (
	"errors"
	"fmt"

	"todo-sentiment/internal/repository"
)

var (
	// ErrNotFound indicates that no row matches the requested id.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when an email is already registered to another user.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput marks a request the service refuses to act on.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorageDisabled is returned by export operations when no bucket is configured.
	ErrStorageDisabled = errors.New("export storage not configured")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// translate maps repository sentinels onto service sentinels, keeping the cause.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrEmailTaken, err)
	default:
		return err
	}
}
