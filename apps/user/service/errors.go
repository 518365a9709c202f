package service

import (
	"fmt"

	"order-feedback/pkg/apperr"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "invalid credentials")
	ErrEmailTaken         = apperr.New(apperr.ErrConflict, "email is already registered")
	ErrUsernameTaken      = apperr.New(apperr.ErrConflict, "username is already taken")
	ErrAccountTaken       = apperr.New(apperr.ErrConflict, "email or username is already taken")
	ErrUserNotFound       = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrEmailRequired      = apperr.Validation("email is required")
	ErrUsernameRequired   = apperr.Validation("username is required")
	ErrPasswordTooShort   = apperr.Validation("password must be at least 6 characters")
)
