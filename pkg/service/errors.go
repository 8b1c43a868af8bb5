// Package service holds the write paths that must keep derived fields and
// workflow state consistent across entities.
package service

import "errors"

var (
	// ErrInvalidTransition is returned when a workflow step is not allowed
	// from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrNumberTaken       = errors.New("change request number already taken")
)
