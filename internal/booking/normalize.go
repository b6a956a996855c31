package booking

import (
	"math"
	"strconv"
	"time"

	"bjorkvang/internal/models"
)

// Normalizer coerces loose records into canonical bookings. It is used
// both for fresh validated requests and for records read back from
// persisted state, where corrupt entries are dropped rather than
// propagated downstream.
type Normalizer struct {
	engine          *StatusEngine
	defaultDuration float64
}

func NewNormalizer(engine *StatusEngine, defaultDurationHours float64) *Normalizer {
	if defaultDurationHours <= 0 {
		defaultDurationHours = models.DefaultDurationHours
	}
	return &Normalizer{engine: engine, defaultDuration: defaultDurationHours}
}

var startLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	startLayout,
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseInstant(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize turns a loose record into a canonical booking. Returns nil
// when the start instant cannot be parsed; callers drop such records.
// Normalizing an already-normalized booking is idempotent.
func (n *Normalizer) Normalize(raw RawRequest) *models.Booking {
	start, ok := parseInstant(raw.String("start"))
	if !ok {
		combined := raw.String("date") + "T" + raw.String("time")
		if start, ok = parseInstant(combined); !ok {
			return nil
		}
	}

	duration := n.defaultDuration
	if rawDuration := raw.String("duration"); rawDuration != "" {
		if parsed, err := strconv.ParseFloat(rawDuration, 64); err == nil &&
			!math.IsNaN(parsed) && !math.IsInf(parsed, 0) && parsed > 0 {
			duration = parsed
		}
	}

	end, ok := parseInstant(raw.String("end"))
	if !ok || !end.After(start) {
		end = start.Add(time.Duration(duration * float64(time.Hour)))
	}

	spaces := raw.List("spaces")
	services := raw.List("services")

	status := raw.String("status")
	if !models.KnownStatus(status) {
		status = n.engine.Compute(spaces, end.Sub(start).Hours(), "")
	}

	b := &models.Booking{
		ID:    raw.String("id"),
		Start: start,
		End:   end,
		Requester: models.Requester{
			Name:  raw.Name(),
			Email: raw.String("email"),
			Phone: raw.String("phone"),
		},
		EventType: raw.String("eventType"),
		Spaces:    spaces,
		Services:  services,
		Message:   raw.String("message"),
		Status:    status,
	}

	if rawAttendees := raw.String("attendees"); rawAttendees != "" {
		if parsed, err := strconv.Atoi(rawAttendees); err == nil && parsed >= 0 {
			b.Attendees = parsed
		}
	}
	if rawVersion := raw.String("version"); rawVersion != "" {
		if parsed, err := strconv.ParseInt(rawVersion, 10, 64); err == nil && parsed > 0 {
			b.Version = parsed
		}
	}
	if createdAt, ok := parseInstant(raw.String("created_at")); ok {
		b.CreatedAt = createdAt
	}
	if updatedAt, ok := parseInstant(raw.String("updated_at")); ok {
		b.UpdatedAt = updatedAt
	}

	return b
}

// ToRecord flattens a booking into the loose shape Normalize accepts.
// Persisted state uses this shape, so load is Normalize(ToRecord(b)).
func ToRecord(b *models.Booking) RawRequest {
	rec := RawRequest{
		"id":        b.ID,
		"start":     b.Start.Format(time.RFC3339),
		"end":       b.End.Format(time.RFC3339),
		"name":      b.Requester.Name,
		"email":     b.Requester.Email,
		"phone":     b.Requester.Phone,
		"eventType": b.EventType,
		"spaces":    b.Spaces,
		"services":  b.Services,
		"message":   b.Message,
		"status":    b.Status,
	}
	if b.Attendees > 0 {
		rec["attendees"] = b.Attendees
	}
	if b.Version > 0 {
		rec["version"] = b.Version
	}
	if !b.CreatedAt.IsZero() {
		rec["created_at"] = b.CreatedAt.Format(time.RFC3339)
	}
	if !b.UpdatedAt.IsZero() {
		rec["updated_at"] = b.UpdatedAt.Format(time.RFC3339)
	}
	return rec
}

// FromFields builds a canonical booking from validated fields. The time
// window is derived once here; duration is never authoritative again.
func (n *Normalizer) FromFields(f *Fields) *models.Booking {
	duration := f.Duration
	if duration <= 0 {
		duration = n.defaultDuration
	}

	return &models.Booking{
		Start: f.Start,
		End:   f.Start.Add(time.Duration(duration * float64(time.Hour))),
		Requester: models.Requester{
			Name:  f.Name,
			Email: f.Email,
			Phone: f.Phone,
		},
		EventType: f.EventType,
		Spaces:    dedupe(f.Spaces),
		Services:  dedupe(f.Services),
		Attendees: f.Attendees,
		Message:   f.Message,
		Status:    n.engine.Compute(f.Spaces, duration, ""),
	}
}
