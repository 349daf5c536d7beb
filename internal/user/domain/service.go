package domain

import (
	"context"
	"errors"
)

// Service creates accounts lazily: the first ticket for an email mints a
// user with a random one-time password, recoverable only through an
// external password-reset flow. The password is never returned.
type Service interface {
	EnsureByEmail(ctx context.Context, email string) (User, error)
}

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrNotFound     = errors.New("not_found")
)
