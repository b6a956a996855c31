package booking

import (
	"strconv"
	"strings"
)

// RawRequest is an inbound booking submission before validation. Values
// may come from JSON bodies, form posts or persisted records, so shapes
// are loose: strings, numbers, arrays or comma-delimited strings.
type RawRequest map[string]any

// fieldAliases maps a canonical field to the spellings seen in the wild.
// The first alias that yields a non-empty value wins.
var fieldAliases = map[string][]string{
	"name":      {"name", "requesterName", "requester_name", "navn"},
	"firstName": {"firstName", "firstname", "fornavn"},
	"lastName":  {"lastName", "lastname", "etternavn"},
	"email":     {"email", "requesterEmail", "requester_email", "emailAddress", "epost"},
	"phone":     {"phone", "phoneNumber", "phone_number", "telefon"},
	"eventType": {"eventType", "event_type", "arrangement"},
	"date":      {"date", "preferredDate", "preferred_date", "dato"},
	"time":      {"time", "preferredTime", "preferred_time", "tid"},
	"duration":  {"duration", "durationHours", "duration_hours", "hours", "varighet"},
	"spaces":    {"spaces", "space", "rooms", "rom"},
	"services":  {"services", "service", "tillegg"},
	"attendees": {"attendees", "attendeeCount", "attendee_count", "participants", "deltakere"},
	"message":   {"message", "notes", "melding"},
	"status":    {"status"},
	"start":     {"start"},
	"end":       {"end"},
}

// String resolves a canonical field to its first non-empty string value,
// trimmed. Numbers and booleans are stringified.
func (r RawRequest) String(field string) string {
	for _, alias := range aliasesFor(field) {
		if s := stringValue(r[alias]); s != "" {
			return s
		}
	}
	return ""
}

// List resolves a canonical field to a deduplicated, trimmed,
// order-preserving list. Accepts arrays and comma-delimited strings.
func (r RawRequest) List(field string) []string {
	var combined []string
	for _, alias := range aliasesFor(field) {
		combined = append(combined, ParseList(r[alias])...)
	}
	return dedupe(combined)
}

// Name resolves the requester name, falling back to first+last name parts.
func (r RawRequest) Name() string {
	if name := r.String("name"); name != "" {
		return name
	}
	parts := make([]string, 0, 2)
	if first := r.String("firstName"); first != "" {
		parts = append(parts, first)
	}
	if last := r.String("lastName"); last != "" {
		parts = append(parts, last)
	}
	return strings.Join(parts, " ")
}

func aliasesFor(field string) []string {
	if aliases, ok := fieldAliases[field]; ok {
		return aliases
	}
	return []string{field}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// ParseList flattens a list-like value into its elements. The grammar is
// comma-split, trim, drop empty. Arrays recurse; scalars stringify.
func ParseList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case []string:
		var out []string
		for _, entry := range val {
			out = append(out, ParseList(entry)...)
		}
		return out
	case []any:
		var out []string
		for _, entry := range val {
			out = append(out, ParseList(entry)...)
		}
		return out
	default:
		if s := stringValue(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
