package booking

import (
	"bjorkvang/internal/models"
)

// StatusEngine decides the initial status of a booking and which
// transitions the deployment allows. The two policies are mutually
// exclusive: the heuristic one auto-confirms big requests at creation
// and never transitions afterwards, the board one starts everything at
// pending and lets approve/reject links move it exactly once.
type StatusEngine struct {
	policy           string
	fullVenueSpace   string
	autoConfirmHours float64
}

func NewStatusEngine(policy, fullVenueSpace string, autoConfirmHours float64) *StatusEngine {
	if policy != models.PolicyHeuristic {
		policy = models.PolicyBoard
	}
	if fullVenueSpace == "" {
		fullVenueSpace = models.FullVenueSpace
	}
	if autoConfirmHours <= 0 {
		autoConfirmHours = models.AutoConfirmHours
	}
	return &StatusEngine{
		policy:           policy,
		fullVenueSpace:   fullVenueSpace,
		autoConfirmHours: autoConfirmHours,
	}
}

func (e *StatusEngine) Policy() string {
	return e.policy
}

// Compute returns the status for a booking. An explicit recognized
// status always wins; otherwise the active policy decides.
func (e *StatusEngine) Compute(spaces []string, durationHours float64, explicit string) string {
	if models.KnownStatus(explicit) {
		return explicit
	}

	if e.policy == models.PolicyBoard {
		return models.StatusPending
	}

	for _, space := range spaces {
		if space == e.fullVenueSpace {
			return models.StatusConfirmed
		}
	}
	if durationHours >= e.autoConfirmHours {
		return models.StatusConfirmed
	}
	return models.StatusPending
}

// CanTransition reports whether the active policy allows moving a
// booking from one status to another. Board transitions are one-way:
// pending to approved or rejected, terminal thereafter.
func (e *StatusEngine) CanTransition(from, to string) bool {
	if e.policy != models.PolicyBoard {
		return false
	}
	if from != models.StatusPending {
		return false
	}
	return to == models.StatusApproved || to == models.StatusRejected
}
