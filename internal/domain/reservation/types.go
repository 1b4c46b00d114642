package reservation

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsActive reports whether the reservation still occupies its time range for
// conflict purposes. Only cancelled reservations release their slot.
func (s Status) IsActive() bool {
	return s != StatusCancelled
}

func (s Status) Label() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusConfirmed:
		return "Confirmed"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusNoShow:
		return "No Show"
	default:
		// Unknown codes can surface from historical rows.
		return capitalize(string(s))
	}
}

func (s Status) Color() string {
	switch s {
	case StatusScheduled:
		return "blue"
	case StatusConfirmed:
		return "green"
	case StatusInProgress:
		return "teal"
	case StatusCompleted:
		return "gray"
	case StatusCancelled:
		return "red"
	case StatusNoShow:
		return "orange"
	default:
		return "gray"
	}
}

type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityMedium    Priority = "medium"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

// DefaultSLA is applied when a stored row carries a legacy priority code the
// current enumeration does not recognize.
const DefaultSLA = 48 * time.Hour

// ParsePriority validates a raw priority code. "urgent" is accepted as a
// legacy alias for emergency.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "urgent" {
		p = PriorityEmergency
	}
	return p, p.IsValid()
}

func (p Priority) String() string {
	return string(p)
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return true
	default:
		return false
	}
}

// SLA returns the duration-from-creation within which the commitment must be
// resolved. The second return is false for unrecognized codes, which fall
// back to DefaultSLA.
func (p Priority) SLA() (time.Duration, bool) {
	switch p {
	case PriorityEmergency:
		return 4 * time.Hour, true
	case PriorityHigh:
		return 24 * time.Hour, true
	case PriorityMedium:
		return 48 * time.Hour, true
	case PriorityLow:
		return 120 * time.Hour, true
	default:
		return DefaultSLA, false
	}
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityEmergency:
		return "Emergency"
	default:
		return capitalize(string(p))
	}
}

func (p Priority) Color() string {
	switch p {
	case PriorityLow:
		return "gray"
	case PriorityMedium:
		return "blue"
	case PriorityHigh:
		return "orange"
	case PriorityEmergency:
		return "red"
	default:
		return "gray"
	}
}

type Category string

const (
	CategoryConsultation Category = "consultation"
	CategoryHomeVisit    Category = "home_visit"
	CategoryFollowUp     Category = "follow_up"
	CategoryAssessment   Category = "assessment"
	CategoryInspection   Category = "inspection"
)

func (c Category) String() string {
	return string(c)
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryConsultation, CategoryHomeVisit, CategoryFollowUp,
		CategoryAssessment, CategoryInspection:
		return true
	default:
		return false
	}
}

func (c Category) Label() string {
	switch c {
	case CategoryConsultation:
		return "Consultation"
	case CategoryHomeVisit:
		return "Home Visit"
	case CategoryFollowUp:
		return "Follow-up"
	case CategoryAssessment:
		return "Assessment"
	case CategoryInspection:
		return "Inspection"
	default:
		return capitalize(string(c))
	}
}

type CancelReason string

const (
	ReasonScheduleConflict CancelReason = "schedule_conflict"
	ReasonNoLongerNeeded   CancelReason = "no_longer_needed"
	ReasonEmergency        CancelReason = "emergency"
	ReasonPersonal         CancelReason = "personal_reasons"
	ReasonOther            CancelReason = "other"
)

func (r CancelReason) String() string {
	return string(r)
}

func (r CancelReason) IsValid() bool {
	switch r {
	case ReasonScheduleConflict, ReasonNoLongerNeeded, ReasonEmergency,
		ReasonPersonal, ReasonOther:
		return true
	default:
		return false
	}
}

func capitalize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
