package booking

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Validation failure reasons.
const (
	ReasonMissingFields   = "missing_fields"
	ReasonInvalidDateTime = "invalid_datetime"
	ReasonInvalidDuration = "invalid_duration"
	ReasonNoSpaceSelected = "no_space_selected"
)

// ValidationError reports a user-correctable problem with a request.
type ValidationError struct {
	Reason string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

// Fields is a validated request, ready for normalization.
type Fields struct {
	Name      string
	Email     string
	Phone     string
	EventType string
	Date      string
	Time      string
	Duration  float64
	Spaces    []string
	Services  []string
	Attendees int
	Message   string
	Start     time.Time
}

// Validator enforces required-field and semantic constraints. The rich
// form variant additionally requires phone, event type and at least one
// selected space.
type Validator struct {
	RichForm bool
}

const startLayout = "2006-01-02T15:04"

// Validate checks the raw request and returns the validated fields.
// No side effects occur on failure.
func (v *Validator) Validate(raw RawRequest) (*Fields, error) {
	f := &Fields{
		Name:      raw.Name(),
		Email:     raw.String("email"),
		Phone:     raw.String("phone"),
		EventType: raw.String("eventType"),
		Date:      raw.String("date"),
		Time:      raw.String("time"),
		Spaces:    raw.List("spaces"),
		Services:  raw.List("services"),
		Message:   raw.String("message"),
	}

	durationRaw := raw.String("duration")

	var missing []string
	if f.Name == "" {
		missing = append(missing, "name")
	}
	if f.Email == "" {
		missing = append(missing, "email")
	}
	if f.Date == "" {
		missing = append(missing, "date")
	}
	if f.Time == "" {
		missing = append(missing, "time")
	}
	if durationRaw == "" {
		missing = append(missing, "duration")
	}
	if v.RichForm {
		if f.Phone == "" {
			missing = append(missing, "phone")
		}
		if f.EventType == "" {
			missing = append(missing, "eventType")
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Reason: ReasonMissingFields, Fields: missing}
	}

	duration, err := strconv.ParseFloat(durationRaw, 64)
	if err != nil || math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, &ValidationError{Reason: ReasonInvalidDuration, Fields: []string{"duration"}}
	}
	f.Duration = duration

	start, err := time.Parse(startLayout, f.Date+"T"+f.Time)
	if err != nil {
		return nil, &ValidationError{Reason: ReasonInvalidDateTime, Fields: []string{"date", "time"}}
	}
	f.Start = start

	if v.RichForm && len(f.Spaces) == 0 {
		return nil, &ValidationError{Reason: ReasonNoSpaceSelected, Fields: []string{"spaces"}}
	}

	if attendeesRaw := raw.String("attendees"); attendeesRaw != "" {
		if n, err := strconv.Atoi(attendeesRaw); err == nil && n >= 0 {
			f.Attendees = n
		}
	}

	return f, nil
}
