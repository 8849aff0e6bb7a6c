package core

import "errors"

var (
	ErrEmptyMessage     = errors.New("message content cannot be empty")
	ErrMessageNotFound  = errors.New("message not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")

	// ErrInvalidCredentials deliberately does not say which of email or
	// password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrMissingFields      = errors.New("display name, email and password are required")
)
