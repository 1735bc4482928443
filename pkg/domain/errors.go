package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownState is returned when a session points at a state ID missing
// from the definition. This indicates a configuration defect.
var ErrUnknownState = errors.New("unknown state")
