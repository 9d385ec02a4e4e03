package domain

import "errors"

var (
	// ErrNotFound is returned by stores when a timeline or task does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTask is returned when a task fails validation.
	ErrInvalidTask = errors.New("invalid task")
	// ErrLastTimeline is returned when deleting the only remaining timeline.
	ErrLastTimeline = errors.New("cannot delete the last timeline")
)
