package commands

import (
	"context"
	"encoding/json"

	"caresched/internal/domain/reservation"
	"caresched/internal/domain/schedule"
	"caresched/internal/pkg/clock"
	"caresched/internal/pkg/errs"
	"caresched/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound = errs.New("reservation not found")
	ErrSlotUnavailable     = errs.New("slot unavailable")
	ErrDomainValidation    = errs.New("domain validation error")
	ErrStoreFailed         = errs.New("store operation failed")
)

type CreateReservationParams struct {
	OwnerID  uuid.UUID
	Category reservation.Category
	Date     reservation.Date
	Start    reservation.TimeOfDay
	End      reservation.TimeOfDay
	Priority reservation.Priority
}

type ReservationCommands interface {
	CreateReservation(ctx context.Context, params CreateReservationParams) (*reservation.Reservation, error)
	RescheduleReservation(ctx context.Context, id uuid.UUID, date reservation.Date, start, end reservation.TimeOfDay) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, id uuid.UUID, reason reservation.CancelReason, note string) (*reservation.Reservation, error)
	ConfirmReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	StartReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	CompleteReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	MarkNoShow(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
}

type reservationCommandsImpl struct {
	store shared.ReservationStore
	clock clock.Clock
}

func NewReservationCommands(store shared.ReservationStore, clk clock.Clock) ReservationCommands {
	return &reservationCommandsImpl{
		store: store,
		clock: clk,
	}
}

// CreateReservation books a new window. The conflict check and the insert run
// inside one per-date critical section so two concurrent callers can never
// both claim the same slot.
func (c *reservationCommandsImpl) CreateReservation(
	ctx context.Context,
	params CreateReservationParams,
) (*reservation.Reservation, error) {
	timeRange, err := reservation.NewTimeRange(params.Start, params.End)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	entity, err := reservation.NewReservation(
		params.OwnerID,
		params.Category,
		params.Date,
		timeRange,
		params.Priority,
		c.clock.Now(),
	)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = c.store.WithDateLock(ctx, params.Date, func(tx shared.Tx) error {
		existing, listErr := tx.ListByDate(ctx, params.Date)
		if listErr != nil {
			return errs.Mark(listErr, ErrStoreFailed)
		}
		if schedule.HasConflict(timeRange, schedule.BusyIntervals(existing, uuid.Nil)) {
			return ErrSlotUnavailable
		}
		if createErr := tx.Create(ctx, entity); createErr != nil {
			return errs.Mark(createErr, ErrStoreFailed)
		}
		return c.notify(ctx, tx, "reservation_created", entity)
	})
	if err != nil {
		return nil, err
	}

	return entity, nil
}

// RescheduleReservation moves an upcoming reservation to a new window,
// re-validated against conflicts with the reservation's own prior booking
// excluded from the comparison set. Choosing the old slot again is processed
// as a fresh update, not a no-op. Status resets to scheduled.
func (c *reservationCommandsImpl) RescheduleReservation(
	ctx context.Context,
	id uuid.UUID,
	date reservation.Date,
	start, end reservation.TimeOfDay,
) (*reservation.Reservation, error) {
	timeRange, err := reservation.NewTimeRange(start, end)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	var entity *reservation.Reservation
	err = c.store.WithDateLock(ctx, date, func(tx shared.Tx) error {
		res, findErr := tx.FindByID(ctx, id)
		if findErr != nil {
			return errs.Mark(findErr, ErrReservationNotFound)
		}

		// Lifecycle guards run before the conflict check so a terminal
		// reservation reports InvalidTransition, not SlotUnavailable.
		if trErr := res.Reschedule(date, timeRange, c.clock.Now()); trErr != nil {
			return trErr
		}

		existing, listErr := tx.ListByDate(ctx, date)
		if listErr != nil {
			return errs.Mark(listErr, ErrStoreFailed)
		}
		if schedule.HasConflict(timeRange, schedule.BusyIntervals(existing, res.ID())) {
			return ErrSlotUnavailable
		}

		if updErr := tx.Update(ctx, res); updErr != nil {
			return errs.Mark(updErr, ErrStoreFailed)
		}
		if ntfErr := c.notify(ctx, tx, "reservation_rescheduled", res); ntfErr != nil {
			return ntfErr
		}
		entity = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entity, nil
}

func (c *reservationCommandsImpl) CancelReservation(
	ctx context.Context,
	id uuid.UUID,
	reason reservation.CancelReason,
	note string,
) (*reservation.Reservation, error) {
	return c.transition(ctx, id, "reservation_cancelled", func(res *reservation.Reservation) error {
		return res.Cancel(reason, note, c.clock.Now())
	})
}

func (c *reservationCommandsImpl) ConfirmReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return c.transition(ctx, id, "reservation_confirmed", func(res *reservation.Reservation) error {
		return res.Confirm(c.clock.Now())
	})
}

func (c *reservationCommandsImpl) StartReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return c.transition(ctx, id, "reservation_started", func(res *reservation.Reservation) error {
		return res.Start(c.clock.Now())
	})
}

func (c *reservationCommandsImpl) CompleteReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return c.transition(ctx, id, "reservation_completed", func(res *reservation.Reservation) error {
		return res.Complete(c.clock.Now())
	})
}

func (c *reservationCommandsImpl) MarkNoShow(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return c.transition(ctx, id, "reservation_no_show", func(res *reservation.Reservation) error {
		return res.MarkNoShow(c.clock.Now())
	})
}

// transition applies a status-only lifecycle move. These never change the
// occupied time range, so they take a plain transaction rather than the
// per-date lock and do not contend with bookings on other dates.
func (c *reservationCommandsImpl) transition(
	ctx context.Context,
	id uuid.UUID,
	topic string,
	apply func(res *reservation.Reservation) error,
) (*reservation.Reservation, error) {
	var entity *reservation.Reservation
	err := c.store.WithTx(ctx, func(tx shared.Tx) error {
		res, findErr := tx.FindByID(ctx, id)
		if findErr != nil {
			return errs.Mark(findErr, ErrReservationNotFound)
		}
		if trErr := apply(res); trErr != nil {
			return trErr
		}
		if updErr := tx.Update(ctx, res); updErr != nil {
			return errs.Mark(updErr, ErrStoreFailed)
		}
		if ntfErr := c.notify(ctx, tx, topic, res); ntfErr != nil {
			return ntfErr
		}
		entity = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (c *reservationCommandsImpl) notify(ctx context.Context, tx shared.Tx, topic string, res *reservation.Reservation) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": res.ID(),
		"owner_id":       res.OwnerID(),
		"status":         res.Status().String(),
		"date":           res.Date().String(),
		"slot":           res.TimeRange().String(),
	})
	if err != nil {
		return errs.Mark(err, ErrStoreFailed)
	}
	if err := tx.EnqueueNotification(ctx, topic, payload, c.clock.Now()); err != nil {
		return errs.Mark(err, ErrStoreFailed)
	}
	return nil
}
