package gateway

import "errors"

var (
	ErrInvalidAmount       = errors.New("order amount below gateway minimum")
	ErrOrderCreationFailed = errors.New("failed to create payment order")
	ErrSignatureMismatch   = errors.New("payment signature verification failed")
	ErrInvalidConfig       = errors.New("invalid gateway configuration")
)
