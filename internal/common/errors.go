// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. Rejected before any side effect takes place.
	ErrorValidation = errors.New("validation error")

	// Transport failures talking to the blob store or the database.
	ErrorStorageUnavailable = errors.New("storage unavailable")
)
