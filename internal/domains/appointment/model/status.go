package model

import "voyage/shared/failure"

const (
	StatusScheduled   = "scheduled"
	StatusConfirmed   = "confirmed"
	StatusRescheduled = "rescheduled"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusNoShow      = "no_show"
	StatusConverted   = "converted"
)

const (
	OpConfirm    = "confirm"
	OpReschedule = "reschedule"
	OpCancel     = "cancel"
	OpComplete   = "complete"
	OpNoShow     = "mark no-show"
	OpConvert    = "convert"
)

// transitions maps operation -> current status -> resulting status.
// A reschedule lands back in scheduled; rescheduled is still read as a live
// scheduled-like status for rows written by older clients.
var transitions = map[string]map[string]string{
	OpConfirm: {
		StatusScheduled:   StatusConfirmed,
		StatusRescheduled: StatusConfirmed,
	},
	OpReschedule: {
		StatusScheduled:   StatusScheduled,
		StatusRescheduled: StatusScheduled,
		StatusConfirmed:   StatusScheduled,
	},
	OpCancel: {
		StatusScheduled:   StatusCancelled,
		StatusRescheduled: StatusCancelled,
		StatusConfirmed:   StatusCancelled,
	},
	OpComplete: {
		StatusConfirmed: StatusCompleted,
	},
	// Completed is excluded: the consultation took place.
	OpNoShow: {
		StatusScheduled:   StatusNoShow,
		StatusRescheduled: StatusNoShow,
		StatusConfirmed:   StatusNoShow,
	},
	OpConvert: {
		StatusCompleted: StatusConverted,
	},
}

// LiveStatuses hold a slot claim.
var LiveStatuses = []string{StatusScheduled, StatusConfirmed, StatusRescheduled}

// Next returns the status reached by applying op to current.
func Next(op, current string) (string, error) {
	next, ok := transitions[op][current]
	if !ok {
		return "", failure.InvalidStateTransition(EntityName, current, op) //nolint:wrapcheck
	}

	return next, nil
}

// AllowedFrom lists the statuses op may be applied to.
func AllowedFrom(op string) []string {
	from := make([]string, 0, len(transitions[op]))
	for status := range transitions[op] {
		from = append(from, status)
	}

	return from
}

func IsTerminal(status string) bool {
	switch status {
	case StatusCancelled, StatusNoShow, StatusConverted:
		return true
	default:
		return false
	}
}
