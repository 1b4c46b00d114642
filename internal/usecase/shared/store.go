// Package shared holds the persistence ports the command and query sides
// both depend on. The engine delegates all reservation I/O to the store; its
// own operations are short, CPU-bound comparisons over one day's records.
package shared

import (
	"context"
	"time"

	"caresched/internal/domain/reservation"

	"github.com/google/uuid"
)

// Tx is the unit-of-work handed to a critical section. Every write inside it
// commits or rolls back atomically.
type Tx interface {
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	ListByDate(ctx context.Context, date reservation.Date) ([]*reservation.Reservation, error)
	Create(ctx context.Context, res *reservation.Reservation) error
	Update(ctx context.Context, res *reservation.Reservation) error
	// EnqueueNotification records a status-change event for the external
	// notifier collaborator, in the same transaction as the state change.
	EnqueueNotification(ctx context.Context, topic string, payload []byte, runAt time.Time) error
}

// ReservationStore is the persistence collaborator.
//
// WithDateLock serializes the closure against every other caller targeting
// the same calendar date, across engine instances, so conflict check and
// write execute as one atomic unit. Different dates must not contend.
// WithTx provides plain transactional scope for transitions that cannot
// introduce conflicts (confirm, cancel, complete, no-show).
type ReservationStore interface {
	WithDateLock(ctx context.Context, date reservation.Date, fn func(tx Tx) error) error
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	ListByDate(ctx context.Context, date reservation.Date) ([]*reservation.Reservation, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*reservation.Reservation, error)
}
