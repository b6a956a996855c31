package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() RawRequest {
	return RawRequest{
		"name":     "Kari Nordmann",
		"email":    "kari@example.com",
		"date":     "2026-10-10",
		"time":     "18:00",
		"duration": "4",
	}
}

func TestValidateMissingFields(t *testing.T) {
	v := &Validator{}

	_, err := v.Validate(RawRequest{})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ReasonMissingFields, vErr.Reason)
	assert.ElementsMatch(t, []string{"name", "email", "date", "time", "duration"}, vErr.Fields)

	raw := validRequest()
	delete(raw, "email")
	_, err = v.Validate(raw)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"email"}, vErr.Fields)
}

func TestValidateFieldAliases(t *testing.T) {
	v := &Validator{}

	f, err := v.Validate(RawRequest{
		"fornavn":   "Kari",
		"etternavn": "Nordmann",
		"epost":     "kari@example.com",
		"dato":      "2026-10-10",
		"tid":       "18:00",
		"varighet":  "4",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kari Nordmann", f.Name)
	assert.Equal(t, "kari@example.com", f.Email)
}

func TestValidateDuration(t *testing.T) {
	v := &Validator{}

	for _, bad := range []string{"abc", "-2", "0", "NaN", "+Inf"} {
		raw := validRequest()
		raw["duration"] = bad
		_, err := v.Validate(raw)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "duration %q", bad)
		assert.Equal(t, ReasonInvalidDuration, vErr.Reason)
	}

	raw := validRequest()
	raw["duration"] = "2.5"
	f, err := v.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 2.5, f.Duration)
}

func TestValidateDateTime(t *testing.T) {
	v := &Validator{}

	raw := validRequest()
	raw["date"] = "10.10.2026"
	_, err := v.Validate(raw)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ReasonInvalidDateTime, vErr.Reason)

	f, err := v.Validate(validRequest())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC), f.Start)
}

func TestValidateRichForm(t *testing.T) {
	v := &Validator{RichForm: true}

	raw := validRequest()
	_, err := v.Validate(raw)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ReasonMissingFields, vErr.Reason)
	assert.ElementsMatch(t, []string{"phone", "eventType"}, vErr.Fields)

	raw["phone"] = "99887766"
	raw["eventType"] = "bursdag"
	_, err = v.Validate(raw)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ReasonNoSpaceSelected, vErr.Reason)

	raw["spaces"] = "storsalen"
	f, err := v.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"storsalen"}, f.Spaces)
}

func TestValidateAttendees(t *testing.T) {
	v := &Validator{}

	raw := validRequest()
	raw["attendees"] = "40"
	f, err := v.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 40, f.Attendees)

	// Garbage attendee counts are ignored, not fatal.
	raw["attendees"] = "many"
	f, err = v.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Attendees)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"storsalen", "kjøkken"}, ParseList("storsalen, kjøkken"))
	assert.Equal(t, []string{"storsalen"}, ParseList([]any{" storsalen ", ""}))
	assert.Empty(t, ParseList(""))
	assert.Nil(t, ParseList(nil))
}
