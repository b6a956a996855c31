package worker

import "time"

// BackoffSchedule spaces out redelivery of a failed mail job. The wait
// doubles after every failed attempt and never exceeds Cap. A job that
// has burned through MaxAttempts is marked failed and dead-lettered.
type BackoffSchedule struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration
}

// Delay returns the wait before retrying after the given failed
// attempt, 1-based.
func (s BackoffSchedule) Delay(attempt int) time.Duration {
	d := s.Base
	if d <= 0 {
		d = time.Second
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if s.Cap > 0 && d >= s.Cap {
			return s.Cap
		}
	}
	return d
}
