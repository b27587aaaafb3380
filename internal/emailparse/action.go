package emailparse

import "strings"

// Action is the appointment operation an email asks for.
type Action string

const (
	ActionBook    Action = "book"
	ActionCancel  Action = "cancel"
	ActionChange  Action = "change"
	ActionUnknown Action = "unknown"
)

// Classify keyword-matches the subject and body to decide the action.
// Cancellation phrases are checked first so "cancellation of your booking"
// is never read as a booking. Unrecognized content returns ActionUnknown;
// the orchestrator decides whether that is rejected or treated as a booking.
func Classify(subject, text string) Action {
	s := strings.ToLower(subject + " " + text)
	switch {
	case strings.Contains(s, "has been cancelled") ||
		strings.Contains(s, "confirmation of cancellation"):
		return ActionCancel
	case strings.Contains(s, "rescheduled") ||
		strings.Contains(s, "booking change") ||
		strings.Contains(s, "changed") ||
		strings.Contains(s, "updated"):
		return ActionChange
	case strings.Contains(s, "has booked") ||
		strings.Contains(s, "booked an appointment") ||
		strings.Contains(s, "confirmation of booking"):
		return ActionBook
	default:
		return ActionUnknown
	}
}
