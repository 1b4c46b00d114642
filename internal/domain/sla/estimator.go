// Package sla derives completion deadlines from priority classifications.
// Deadlines are recomputed on demand, never stored, so they cannot drift when
// a priority is re-evaluated.
package sla

import (
	"log/slog"
	"time"

	"caresched/internal/domain/reservation"
)

type Estimator struct {
	logger *slog.Logger
}

func NewEstimator(logger *slog.Logger) *Estimator {
	return &Estimator{logger: logger}
}

// Deadline maps a priority to the instant by which the commitment must be
// resolved: emergency 4h, high 24h, medium 48h, low 120h from the given
// instant. Unrecognized codes fall back to the 48h default; historical rows
// may carry legacy priorities, so this is logged as a data-quality signal
// rather than rejected.
func (e *Estimator) Deadline(priority reservation.Priority, from time.Time) time.Time {
	sla, known := priority.SLA()
	if !known {
		e.logger.Warn("unknown priority code, applying default SLA",
			"priority", priority.String(),
			"default", reservation.DefaultSLA.String(),
		)
	}
	return from.Add(sla)
}

// IsOverdue reports whether the deadline has passed for a still-open
// commitment. Completion ends the obligation. So does cancellation: a
// cancelled-but-late reservation is deliberately not reported as overdue.
func IsOverdue(deadline, now time.Time, status reservation.Status) bool {
	if status == reservation.StatusCompleted {
		return false
	}
	if status == reservation.StatusCancelled {
		return false
	}
	return now.After(deadline)
}
