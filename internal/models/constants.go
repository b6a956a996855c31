package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusBlocked   = "blocked"
)

// Coarse statuses shown on the public calendar.
const (
	PublicStatusPending = "pending"
	PublicStatusBooked  = "booked"
	PublicStatusBlocked = "blocked"
)

// Status policy modes. Exactly one is active per deployment.
const (
	PolicyHeuristic = "heuristic"
	PolicyBoard     = "board"
)

const (
	// DefaultDurationHours window length used when a request carries no duration
	DefaultDurationHours = 4

	// AutoConfirmHours duration at which the heuristic policy auto-confirms
	AutoConfirmHours = 8

	// FullVenueSpace space name meaning the entire venue is requested
	FullVenueSpace = "hele lokalet"

	// DefaultMaxBookingDays how far into the future requests are accepted
	DefaultMaxBookingDays = 365

	// DefaultCalendarCacheTTL lifetime of the cached public calendar in seconds
	DefaultCalendarCacheTTL = 5 * 60

	// RateLimitSubmissions submissions allowed per client per window
	RateLimitSubmissions = 10

	// RateLimitWindow submission rate limit window in seconds
	RateLimitWindow = 60

	// NotifyQueueSize size of the notification worker queue
	NotifyQueueSize = 1000
)

// KnownStatus reports whether s is one of the recognized booking statuses.
func KnownStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusApproved, StatusRejected, StatusBlocked:
		return true
	}
	return false
}

// Terminal reports whether a status permits no further transitions
// under the board policy.
func Terminal(s string) bool {
	return s == StatusApproved || s == StatusRejected
}
