package database

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound unknown booking id
	ErrNotFound = errors.New("booking not found")

	// ErrConflict requested window overlaps an existing booking
	ErrConflict = errors.New("requested time slot is already booked")

	// ErrInvalidTransition status change not allowed by the active policy
	ErrInvalidTransition = errors.New("booking status transition not allowed")

	// ErrConcurrentModification optimistic version check failed
	ErrConcurrentModification = errors.New("booking was modified concurrently")

	// ErrPastDate requested start lies in the past
	ErrPastDate = errors.New("booking date is in the past")

	// ErrDateTooFar requested start exceeds the booking horizon
	ErrDateTooFar = errors.New("booking date is too far in the future")
)

// ConflictError carries the window of the booking that blocked admission
// so callers can report the conflicting time. errors.Is matches ErrConflict.
type ConflictError struct {
	BookingID string
	Start     time.Time
	End       time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicts with booking %s (%s - %s)",
		e.BookingID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
