package normalize

import "errors"

var (
	ErrEmptySlug    = errors.New("slug is empty after normalization")
	ErrReservedSlug = errors.New("slug is reserved")
	ErrInvalidEmail = errors.New("invalid email format")
)
