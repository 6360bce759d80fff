package models

import (
	"errors"
)

// Shared failure kinds returned by the core services. Callers distinguish
// retryable failures (ErrUnavailable) from permanent ones with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyPending = errors.New("already has a pending duel")
	ErrInvalidState   = errors.New("invalid duel state")
	ErrUnavailable    = errors.New("upstream unavailable")
	ErrInvalidInput   = errors.New("invalid input")
)
