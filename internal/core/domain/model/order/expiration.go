package order

import "time"

// Durations for time-bounded states. An order left in one of these states
// past its window must be escalated by an external scheduler; the policy
// here only derives the deadline.
const (
	// PendingExpiration bounds how long a checkout may sit unsubmitted.
	PendingExpiration = 48 * time.Hour

	// SubmittedExpiration bounds how long a seller may leave an order unanswered.
	SubmittedExpiration = 72 * time.Hour

	// ApprovedExpiration bounds how long an approved order may go unfulfilled.
	ApprovedExpiration = 7 * 24 * time.Hour

	// DefaultReminderLead is how far before the deadline a reminder fires.
	DefaultReminderLead = 5 * time.Hour
)

func stateDurations() map[State]time.Duration {
	return map[State]time.Duration{
		StatePending:   PendingExpiration,
		StateSubmitted: SubmittedExpiration,
		StateApproved:  ApprovedExpiration,
	}
}

// ExpiresAt derives the deadline for a state entered at updatedAt.
// States without a configured duration have no expiration and yield nil.
// Pure function of its inputs.
func ExpiresAt(state State, updatedAt time.Time) *time.Time {
	duration, ok := stateDurations()[state]
	if !ok {
		return nil
	}
	deadline := updatedAt.UTC().Add(duration)
	return &deadline
}

// ReminderTime returns the instant a reminder should fire ahead of the
// deadline. Pure function of its inputs.
func ReminderTime(expiresAt time.Time, lead time.Duration) time.Time {
	return expiresAt.Add(-lead)
}
