// Package common defines shared constants and sentinel errors used across
// the repository, service and transport layers of gophdiary. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrQueryFailed wraps any backend-reported database failure.
	ErrQueryFailed = errors.New("query failed")

	// Session errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")

	// ErrConflict reports a taken storage path or email.
	ErrConflict      = errors.New("conflict")
	ErrSigningFailed = errors.New("signing failed")

	// Input validation errors.
	ErrValidation = errors.New("validation error")
)
