// Package apperr holds sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalid           = errors.New("invalid input")
	ErrUnknownCollection = errors.New("unknown collection")
)
