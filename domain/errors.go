package domain

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrTokenNotFound    = errors.New("token not found")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTransport        = errors.New("transport error")
	ErrStoreUnavailable = errors.New("store unavailable")
)
