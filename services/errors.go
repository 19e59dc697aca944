package services

import "errors"

// Business error kinds. Handlers map these to HTTP statuses with errors.Is;
// anything else is an infrastructure fault and surfaces as a 500.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidState       = errors.New("invalid state")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrConflict           = errors.New("conflict")
)
