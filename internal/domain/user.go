package domain

import "time"

// User represents an account holder. PasswordHash is never serialised out.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	AddedOn      time.Time
	UpdatedOn    *time.Time
}

// UserPatch carries the optional fields of a user update. Nil means keep the stored value.
type UserPatch struct {
	Name  *string
	Email *string
}

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID int64
}
