package reservation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is the errors.Is target for every disallowed
// lifecycle move. The concrete *InvalidTransitionError carries the states so
// callers can render a precise message.
var ErrInvalidTransition = errors.New("invalid reservation transition")

// ErrNotUpcoming marks transitions that are only legal while the
// reservation's window is still ahead.
var ErrNotUpcoming = errors.New("reservation window has already started")

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func invalidTransition(from, to Status) error {
	return &InvalidTransitionError{From: from, To: to}
}

// Confirm moves scheduled → confirmed and records the confirmation instant.
func (r *Reservation) Confirm(now time.Time) error {
	if r.status != StatusScheduled {
		return invalidTransition(r.status, StatusConfirmed)
	}
	r.status = StatusConfirmed
	r.confirmedAt = &now
	r.updatedAt = now
	return nil
}

// Reschedule moves the reservation to a new date/time window. Allowed from
// scheduled or confirmed while the current window is still upcoming. The
// conflict check against other reservations is the caller's responsibility
// and must run inside the same critical section as the write. Status resets
// to scheduled: a rescheduled confirmation has to be re-confirmed.
func (r *Reservation) Reschedule(date Date, timeRange TimeRange, now time.Time) error {
	if r.status != StatusScheduled && r.status != StatusConfirmed {
		return invalidTransition(r.status, StatusScheduled)
	}
	if !r.IsUpcoming(now) {
		return ErrNotUpcoming
	}
	if date.IsZero() {
		return ErrZeroDate
	}
	r.date = date
	r.timeRange = timeRange
	r.status = StatusScheduled
	r.confirmedAt = nil
	r.updatedAt = now
	return nil
}

// Cancel is terminal and requires a reason from the fixed enumeration plus an
// optional free-text note. Only upcoming scheduled/confirmed reservations can
// be cancelled.
func (r *Reservation) Cancel(reason CancelReason, note string, now time.Time) error {
	if r.status != StatusScheduled && r.status != StatusConfirmed {
		return invalidTransition(r.status, StatusCancelled)
	}
	if !r.IsUpcoming(now) {
		return ErrNotUpcoming
	}
	if !reason.IsValid() {
		return ErrInvalidCancelReason
	}
	r.status = StatusCancelled
	r.cancelReason = &reason
	r.cancelNote = note
	r.cancelledAt = &now
	r.updatedAt = now
	return nil
}

// Start marks the visit as underway. Administrative transition.
func (r *Reservation) Start(now time.Time) error {
	if r.status != StatusConfirmed {
		return invalidTransition(r.status, StatusInProgress)
	}
	r.status = StatusInProgress
	r.updatedAt = now
	return nil
}

// Complete closes out the reservation. Accepted from in_progress, or from
// confirmed when the operator never marked the visit started. The engine does
// not verify the window has elapsed; that belongs to the administrative
// workflow driving this call.
func (r *Reservation) Complete(now time.Time) error {
	if r.status != StatusInProgress && r.status != StatusConfirmed {
		return invalidTransition(r.status, StatusCompleted)
	}
	r.status = StatusCompleted
	r.updatedAt = now
	return nil
}

// MarkNoShow records that the owner did not attend. Administrative
// transition, terminal.
func (r *Reservation) MarkNoShow(now time.Time) error {
	if r.status != StatusScheduled && r.status != StatusConfirmed {
		return invalidTransition(r.status, StatusNoShow)
	}
	r.status = StatusNoShow
	r.updatedAt = now
	return nil
}
