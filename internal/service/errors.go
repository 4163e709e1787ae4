package service

import "errors"

// Every error a use case returns wraps exactly one of these. The HTTP layer
// maps them to status codes.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrRemote           = errors.New("remote call failed")
	ErrBusinessRule     = errors.New("business rule violated")
	ErrConflict         = errors.New("concurrent modification")
)
