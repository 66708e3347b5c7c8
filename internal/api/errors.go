package api

import (
	"errors"
	"net/http"

	"multistore/pkg/store"

	"github.com/go-playground/validator/v10"
)

const (
	msgNotFound      = "User not found"
	msgInvalidBody   = "Invalid request body"
	msgRequired      = "Name, email and phone are required"
	msgRequiredNoTel = "Name and email are required"
)

// statusFor maps a store error onto the response status and message.
// Raw driver messages are passed through as-is.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// bindMessage turns a binding failure into the 400 message.
func bindMessage(err error, requirePhone bool) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgInvalidBody
	}
	if requirePhone {
		return msgRequired
	}
	return msgRequiredNoTel
}
