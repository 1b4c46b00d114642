package queries

import (
	"context"
	"time"

	"caresched/internal/domain/reservation"
	"caresched/internal/domain/schedule"
	"caresched/internal/domain/sla"
	"caresched/internal/pkg/clock"
	"caresched/internal/pkg/errs"
	"caresched/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrReservationNotFound = errs.New("reservation not found")

// ReservationView is the read model handed to the delivery layer. It carries
// the derived SLA deadline and the per-axis labels so the caller renders
// without re-implementing the lookup tables.
type ReservationView struct {
	ID            uuid.UUID                 `json:"id"`
	OwnerID       uuid.UUID                 `json:"owner_id"`
	Category      reservation.Category      `json:"category"`
	CategoryLabel string                    `json:"category_label"`
	Date          string                    `json:"date"`
	Start         string                    `json:"start"`
	End           string                    `json:"end"`
	Slot          string                    `json:"slot"`
	Priority      reservation.Priority      `json:"priority"`
	PriorityLabel string                    `json:"priority_label"`
	PriorityColor string                    `json:"priority_color"`
	Status        reservation.Status        `json:"status"`
	StatusLabel   string                    `json:"status_label"`
	StatusColor   string                    `json:"status_color"`
	CancelReason  *reservation.CancelReason `json:"cancel_reason,omitempty"`
	CancelNote    *string                   `json:"cancel_note,omitempty"`
	CancelledAt   *time.Time                `json:"cancelled_at,omitempty"`
	ConfirmedAt   *time.Time                `json:"confirmed_at,omitempty"`
	SLADeadline   time.Time                 `json:"sla_deadline"`
	Overdue       bool                      `json:"overdue"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

type SlotView struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

type ReservationQueries interface {
	// AvailableSlots enumerates the free candidate slots on a date.
	// excludeID removes one reservation from the conflict set, for
	// regenerating options while rescheduling it.
	AvailableSlots(ctx context.Context, date reservation.Date, excludeID uuid.UUID) ([]SlotView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*ReservationView, error)
}

type reservationQueriesImpl struct {
	store     shared.ReservationStore
	estimator *sla.Estimator
	cfg       schedule.Config
	clock     clock.Clock
}

func NewReservationQueries(
	store shared.ReservationStore,
	estimator *sla.Estimator,
	cfg schedule.Config,
	clk clock.Clock,
) ReservationQueries {
	return &reservationQueriesImpl{
		store:     store,
		estimator: estimator,
		cfg:       cfg,
		clock:     clk,
	}
}

func (q *reservationQueriesImpl) AvailableSlots(
	ctx context.Context,
	date reservation.Date,
	excludeID uuid.UUID,
) ([]SlotView, error) {
	existing, err := q.store.ListByDate(ctx, date)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list reservations for slot grid")
	}

	slots := schedule.AvailableSlots(q.cfg, schedule.BusyIntervals(existing, excludeID))

	views := make([]SlotView, len(slots))
	for i, s := range slots {
		views[i] = SlotView{
			Start: s.Start.String(),
			End:   s.End.String(),
			Label: s.Label,
		}
	}
	return views, nil
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	res, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Mark(err, ErrReservationNotFound)
	}
	return q.toView(res), nil
}

func (q *reservationQueriesImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*ReservationView, error) {
	list, err := q.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list reservations by owner")
	}

	views := make([]*ReservationView, len(list))
	for i, res := range list {
		views[i] = q.toView(res)
	}
	return views, nil
}

func (q *reservationQueriesImpl) toView(res *reservation.Reservation) *ReservationView {
	deadline := q.estimator.Deadline(res.Priority(), res.CreatedAt())

	var note *string
	if res.CancelNote() != "" {
		n := res.CancelNote()
		note = &n
	}

	return &ReservationView{
		ID:            res.ID(),
		OwnerID:       res.OwnerID(),
		Category:      res.Category(),
		CategoryLabel: res.Category().Label(),
		Date:          res.Date().String(),
		Start:         res.TimeRange().Start().String(),
		End:           res.TimeRange().End().String(),
		Slot:          res.TimeRange().String(),
		Priority:      res.Priority(),
		PriorityLabel: res.Priority().Label(),
		PriorityColor: res.Priority().Color(),
		Status:        res.Status(),
		StatusLabel:   res.Status().Label(),
		StatusColor:   res.Status().Color(),
		CancelReason:  res.CancelReason(),
		CancelNote:    note,
		CancelledAt:   res.CancelledAt(),
		ConfirmedAt:   res.ConfirmedAt(),
		SLADeadline:   deadline,
		Overdue:       sla.IsOverdue(deadline, q.clock.Now(), res.Status()),
		CreatedAt:     res.CreatedAt(),
		UpdatedAt:     res.UpdatedAt(),
	}
}
