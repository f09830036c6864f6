package game

import "errors"

// Caller-facing error taxonomy. All of these are recoverable and map
// to a rejected action or request, never to a process failure.
var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientAP     = errors.New("insufficient action points")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPreconditionFailed = errors.New("precondition failed")
)
