package view

import (
	"strings"
	"time"

	"bjorkvang/internal/models"
)

// CalendarEvent is one renderable calendar entry. StyleClass is derived
// from the status so the widget can color slots without knowing statuses.
type CalendarEvent struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Status     string `json:"status"`
	StyleClass string `json:"className"`
}

// PublicStatus coarsens a status for unauthenticated viewers: pending
// stays pending, blocked stays blocked, everything else that occupies
// the slot reads as booked.
func PublicStatus(status string) string {
	switch status {
	case models.StatusPending:
		return models.PublicStatusPending
	case models.StatusBlocked:
		return models.PublicStatusBlocked
	default:
		return models.PublicStatusBooked
	}
}

// PublicCalendar builds the masked projection. Requester identity never
// appears here, and rejected requests are omitted rather than shown as
// taken slots.
func PublicCalendar(bookings []*models.Booking) []models.PublicEntry {
	entries := make([]models.PublicEntry, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == models.StatusRejected {
			continue
		}
		entries = append(entries, models.PublicEntry{
			ID:     b.ID,
			Start:  b.Start.Format(time.RFC3339),
			End:    b.End.Format(time.RFC3339),
			Status: PublicStatus(b.Status),
		})
	}
	return entries
}

// PublicEvents renders the masked calendar entries for the widget.
func PublicEvents(bookings []*models.Booking) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == models.StatusRejected {
			continue
		}
		status := PublicStatus(b.Status)
		events = append(events, CalendarEvent{
			ID:         b.ID,
			Title:      "Reservert",
			Start:      b.Start.Format(time.RFC3339),
			End:        b.End.Format(time.RFC3339),
			Status:     status,
			StyleClass: "booking-" + status,
		})
	}
	return events
}

// AdminEvents renders the full-detail calendar entries.
func AdminEvents(bookings []*models.Booking) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(bookings))
	for _, b := range bookings {
		title := "Reservert: " + b.Requester.Name
		if len(b.Spaces) > 0 {
			title += " (" + strings.Join(b.Spaces, ", ") + ")"
		}
		events = append(events, CalendarEvent{
			ID:         b.ID,
			Title:      title,
			Start:      b.Start.Format(time.RFC3339),
			End:        b.End.Format(time.RFC3339),
			Status:     b.Status,
			StyleClass: "booking-" + b.Status,
		})
	}
	return events
}
