package models

import "time"

// Requester identifies who asked for the booking.
type Requester struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Booking struct {
	ID        string    `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Requester Requester `json:"requester"`
	EventType string    `json:"event_type,omitempty"`
	Spaces    []string  `json:"spaces"`
	Services  []string  `json:"services,omitempty"`
	Attendees int       `json:"attendees,omitempty"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"` // pending, confirmed, approved, rejected, blocked
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// DurationHours returns the window length in hours.
func (b *Booking) DurationHours() float64 {
	return b.End.Sub(b.Start).Hours()
}

// Blocks reports whether the booking occupies its slot on the calendar.
// Rejected requests never block.
func (b *Booking) Blocks() bool {
	return b.Status != StatusRejected
}

// Overlaps reports half-open interval overlap: [s1,e1) and [s2,e2)
// overlap iff s1 < e2 && e1 > s2. Touching edges do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

// SharesSpace reports whether the booking's space set intersects the
// given one. An empty set means the entire venue and intersects anything.
func (b *Booking) SharesSpace(spaces []string) bool {
	if len(b.Spaces) == 0 || len(spaces) == 0 {
		return true
	}
	for _, mine := range b.Spaces {
		for _, theirs := range spaces {
			if mine == theirs {
				return true
			}
		}
	}
	return false
}
