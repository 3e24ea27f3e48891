package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a state transition is not allowed
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGuardFailed is returned when every candidate transition is blocked by its guard
	ErrGuardFailed = errors.New("guard condition failed")

	// ErrUnknownState is returned when a machine is built with a state that was never configured
	ErrUnknownState = errors.New("unknown state")
)
