package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCategory     = errors.New("invalid service category")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidCancelReason = errors.New("invalid cancellation reason")
)

// Reservation is a booked service window and its lifecycle state. The engine
// never deletes reservations; cancelled rows stay behind with their
// cancellation metadata.
type Reservation struct {
	id           uuid.UUID
	ownerID      uuid.UUID
	category     Category
	date         Date
	timeRange    TimeRange
	priority     Priority
	status       Status
	cancelReason *CancelReason
	cancelNote   string
	cancelledAt  *time.Time
	confirmedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

func NewReservation(
	ownerID uuid.UUID,
	category Category,
	date Date,
	timeRange TimeRange,
	priority Priority,
	now time.Time,
) (*Reservation, error) {
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if !priority.IsValid() {
		return nil, ErrInvalidPriority
	}
	if date.IsZero() {
		return nil, ErrZeroDate
	}

	return &Reservation{
		id:        uuid.New(),
		ownerID:   ownerID,
		category:  category,
		date:      date,
		timeRange: timeRange,
		priority:  priority,
		status:    StatusScheduled,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructReservation rebuilds an aggregate from a stored row. Enum codes
// are taken as-is: historical rows may carry values outside the current
// enumerations and are still readable.
func ReconstructReservation(
	id, ownerID uuid.UUID,
	category Category,
	date Date,
	timeRange TimeRange,
	priority Priority,
	status Status,
	cancelReason *CancelReason,
	cancelNote string,
	cancelledAt, confirmedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:           id,
		ownerID:      ownerID,
		category:     category,
		date:         date,
		timeRange:    timeRange,
		priority:     priority,
		status:       status,
		cancelReason: cancelReason,
		cancelNote:   cancelNote,
		cancelledAt:  cancelledAt,
		confirmedAt:  confirmedAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// IsUpcoming reports whether the reservation's window has not started yet:
// its date is strictly in the future, or it is today and the start time is
// still ahead of the current instant.
func (r *Reservation) IsUpcoming(now time.Time) bool {
	today := DateOf(now)
	if r.date.After(today) {
		return true
	}
	if r.date.Equal(today) {
		return TimeOfDayOf(now).Before(r.timeRange.Start())
	}
	return false
}

func (r *Reservation) ID() uuid.UUID               { return r.id }
func (r *Reservation) OwnerID() uuid.UUID          { return r.ownerID }
func (r *Reservation) Category() Category          { return r.category }
func (r *Reservation) Date() Date                  { return r.date }
func (r *Reservation) TimeRange() TimeRange        { return r.timeRange }
func (r *Reservation) Priority() Priority          { return r.priority }
func (r *Reservation) Status() Status              { return r.status }
func (r *Reservation) CancelReason() *CancelReason { return r.cancelReason }
func (r *Reservation) CancelNote() string          { return r.cancelNote }
func (r *Reservation) CancelledAt() *time.Time     { return r.cancelledAt }
func (r *Reservation) ConfirmedAt() *time.Time     { return r.confirmedAt }
func (r *Reservation) CreatedAt() time.Time        { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time        { return r.updatedAt }
