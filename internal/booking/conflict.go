package booking

import (
	"time"

	"bjorkvang/internal/models"
)

// FindConflict returns the first existing booking whose time window
// overlaps [start,end) and whose space set intersects the candidate's,
// or nil when the slot is free. This is the admission gate: it must run
// after normalization and before persistence.
//
// Iteration order is the store's order, so ties report the first
// encountered booking, not the earliest-starting one. Malformed records
// never block, and neither do rejected bookings.
func FindConflict(start, end time.Time, spaces []string, existing []*models.Booking) *models.Booking {
	for _, b := range existing {
		if b == nil || !b.Blocks() {
			continue
		}
		if b.Start.IsZero() || b.End.IsZero() || !b.End.After(b.Start) {
			continue
		}
		if b.Overlaps(start, end) && b.SharesSpace(spaces) {
			return b
		}
	}
	return nil
}
