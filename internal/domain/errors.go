package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("not the owner of this resource")

	ErrNotFound        = errors.New("not found")
	ErrPostNotFound    = fmt.Errorf("post %w", ErrNotFound)
	ErrProfileNotFound = fmt.Errorf("profile %w", ErrNotFound)
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)

	ErrConflict      = errors.New("conflict")
	ErrEmailConflict = fmt.Errorf("email already in use: %w", ErrConflict)
	ErrAlreadyLiked  = fmt.Errorf("post already liked: %w", ErrConflict)
	ErrNotLiked      = fmt.Errorf("post not liked: %w", ErrConflict)
	ErrAlreadySaved  = fmt.Errorf("post already saved: %w", ErrConflict)
	ErrNotSaved      = fmt.Errorf("post not saved: %w", ErrConflict)

	// ErrProfileMissing means a valid token names an email with no profile.
	ErrProfileMissing = errors.New("no profile for authenticated account")
)
