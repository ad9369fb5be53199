package domain

import "errors"

// Sentinel errors shared across the service and repository layers.
// Handlers map these to HTTP status codes with errors.Is, so lower layers
// wrap them with %w instead of inventing new error types per call site.
var (
	// ErrInvalidInput marks user-correctable input problems (bad slug,
	// malformed email, unknown ids in a request body). Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation marks upload content rejections (type, size, empty file).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a row does not exist. Repositories wrap
	// pgx.ErrNoRows into this so callers don't depend on the driver.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized covers bad credentials, missing or expired sessions,
	// and disabled accounts.
	ErrUnauthorized = errors.New("unauthorized")
)
