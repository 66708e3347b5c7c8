// Package store defines the contract every user backend implements and
// the error signals the HTTP layer maps to status codes.
package store

import (
	"context"
	"errors"
	"fmt"

	"multistore/pkg/models"
)

var (
	// ErrNotFound means no record matches the identifier.
	ErrNotFound = errors.New("user not found")
	// ErrUnavailable means the backend connection is not usable right now.
	ErrUnavailable = errors.New("backend unavailable")
)

// UserStore is a CRUD adapter over one backing store.
type UserStore interface {
	// Name is the path segment the store is mounted under.
	Name() string
	// Init connects and ensures the users table or collection exists.
	// A failed Init leaves the store not ready.
	Init(ctx context.Context) error
	Ready() bool
	Create(ctx context.Context, in models.UserInput) (*models.User, error)
	// List returns users newest-created first, never nil.
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, in models.UserInput) (*models.User, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Error wraps a raw backend failure. Its message is the driver's message.
type Error struct {
	Backend string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err and a *Error otherwise. Sentinel errors
// from this package pass through untouched.
func Wrap(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnavailable) {
		return err
	}
	return &Error{Backend: backend, Op: op, Err: err}
}

// Unavailable builds the fail-fast error for a store that is not ready.
func Unavailable(backend string) error {
	return fmt.Errorf("%s is not connected: %w", backend, ErrUnavailable)
}
