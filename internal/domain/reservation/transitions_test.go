//go:build unit

package reservation_test

import (
	"errors"
	"testing"
	"time"

	"caresched/internal/domain/reservation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// atStatus builds an upcoming reservation already sitting at the given status.
func atStatus(t *testing.T, status reservation.Status) *reservation.Reservation {
	t.Helper()
	var confirmedAt *time.Time
	if status != reservation.StatusScheduled {
		ts := testNow
		confirmedAt = &ts
	}
	return reservation.ReconstructReservation(
		uuid.New(), uuid.New(),
		reservation.CategoryConsultation,
		reservation.NewDate(2026, time.March, 2),
		mustRange(t, "09:00", "10:00"),
		reservation.PriorityMedium,
		status,
		nil, "",
		nil, confirmedAt,
		testNow, testNow,
	)
}

func TestTransitionMatrix(t *testing.T) {
	allStatuses := []reservation.Status{
		reservation.StatusScheduled,
		reservation.StatusConfirmed,
		reservation.StatusInProgress,
		reservation.StatusCompleted,
		reservation.StatusCancelled,
		reservation.StatusNoShow,
	}

	transitions := []struct {
		name    string
		apply   func(r *reservation.Reservation) error
		allowed map[reservation.Status]bool
	}{
		{
			name:  "confirm",
			apply: func(r *reservation.Reservation) error { return r.Confirm(testNow) },
			allowed: map[reservation.Status]bool{
				reservation.StatusScheduled: true,
			},
		},
		{
			name: "cancel",
			apply: func(r *reservation.Reservation) error {
				return r.Cancel(reservation.ReasonOther, "", testNow)
			},
			allowed: map[reservation.Status]bool{
				reservation.StatusScheduled: true,
				reservation.StatusConfirmed: true,
			},
		},
		{
			name: "reschedule",
			apply: func(r *reservation.Reservation) error {
				return r.Reschedule(reservation.NewDate(2026, time.March, 3), mustRange(t, "11:00", "12:00"), testNow)
			},
			allowed: map[reservation.Status]bool{
				reservation.StatusScheduled: true,
				reservation.StatusConfirmed: true,
			},
		},
		{
			name:  "start",
			apply: func(r *reservation.Reservation) error { return r.Start(testNow) },
			allowed: map[reservation.Status]bool{
				reservation.StatusConfirmed: true,
			},
		},
		{
			name:  "complete",
			apply: func(r *reservation.Reservation) error { return r.Complete(testNow) },
			allowed: map[reservation.Status]bool{
				reservation.StatusConfirmed:  true,
				reservation.StatusInProgress: true,
			},
		},
		{
			name:  "mark no-show",
			apply: func(r *reservation.Reservation) error { return r.MarkNoShow(testNow) },
			allowed: map[reservation.Status]bool{
				reservation.StatusScheduled: true,
				reservation.StatusConfirmed: true,
			},
		},
	}

	for _, tr := range transitions {
		t.Run(tr.name, func(t *testing.T) {
			for _, from := range allStatuses {
				t.Run("from "+from.String(), func(t *testing.T) {
					res := atStatus(t, from)
					err := tr.apply(res)
					if tr.allowed[from] {
						assert.NoError(t, err)
					} else {
						assert.ErrorIs(t, err, reservation.ErrInvalidTransition)
						// The rejected aggregate keeps its state.
						assert.Equal(t, from, res.Status())
					}
				})
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	res := atStatus(t, reservation.StatusScheduled)

	require.NoError(t, res.Confirm(testNow))

	assert.Equal(t, reservation.StatusConfirmed, res.Status())
	require.NotNil(t, res.ConfirmedAt())
	assert.Equal(t, testNow, *res.ConfirmedAt())
	assert.Equal(t, testNow, res.UpdatedAt())
}

func TestInvalidTransitionError(t *testing.T) {
	res := atStatus(t, reservation.StatusCompleted)
	err := res.Confirm(testNow)

	var trErr *reservation.InvalidTransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, reservation.StatusCompleted, trErr.From)
	assert.Equal(t, reservation.StatusConfirmed, trErr.To)
	assert.True(t, errors.Is(err, reservation.ErrInvalidTransition))
}

func TestReschedule(t *testing.T) {
	newDate := reservation.NewDate(2026, time.March, 5)
	newRange := mustRange(t, "14:00", "15:00")

	t.Run("moves the window and resets to scheduled", func(t *testing.T) {
		res := atStatus(t, reservation.StatusConfirmed)
		require.NotNil(t, res.ConfirmedAt())

		require.NoError(t, res.Reschedule(newDate, newRange, testNow))

		assert.Equal(t, newDate, res.Date())
		assert.True(t, res.TimeRange().Equal(newRange))
		assert.Equal(t, reservation.StatusScheduled, res.Status())
		assert.Nil(t, res.ConfirmedAt(), "a moved confirmation must be re-confirmed")
	})

	t.Run("rejects a zero date", func(t *testing.T) {
		res := atStatus(t, reservation.StatusScheduled)
		err := res.Reschedule(reservation.Date{}, newRange, testNow)
		assert.ErrorIs(t, err, reservation.ErrZeroDate)
	})

	t.Run("rejects once the window has started", func(t *testing.T) {
		res := atStatus(t, reservation.StatusScheduled)
		afterStart := res.Date().At(res.TimeRange().Start(), time.UTC).Add(time.Minute)

		err := res.Reschedule(newDate, newRange, afterStart)

		assert.ErrorIs(t, err, reservation.ErrNotUpcoming)
		assert.Equal(t, reservation.NewDate(2026, time.March, 2), res.Date())
	})
}

func TestCancel(t *testing.T) {
	t.Run("records reason, note and instant", func(t *testing.T) {
		res := atStatus(t, reservation.StatusConfirmed)

		require.NoError(t, res.Cancel(reservation.ReasonScheduleConflict, "moved abroad", testNow))

		assert.Equal(t, reservation.StatusCancelled, res.Status())
		require.NotNil(t, res.CancelReason())
		assert.Equal(t, reservation.ReasonScheduleConflict, *res.CancelReason())
		assert.Equal(t, "moved abroad", res.CancelNote())
		require.NotNil(t, res.CancelledAt())
		assert.Equal(t, testNow, *res.CancelledAt())
	})

	t.Run("note is optional", func(t *testing.T) {
		res := atStatus(t, reservation.StatusScheduled)
		require.NoError(t, res.Cancel(reservation.ReasonNoLongerNeeded, "", testNow))
		assert.Empty(t, res.CancelNote())
	})

	t.Run("rejects an unknown reason", func(t *testing.T) {
		res := atStatus(t, reservation.StatusScheduled)
		err := res.Cancel(reservation.CancelReason("changed_my_mind"), "", testNow)
		assert.ErrorIs(t, err, reservation.ErrInvalidCancelReason)
		assert.Equal(t, reservation.StatusScheduled, res.Status())
	})

	t.Run("rejects once the window has started", func(t *testing.T) {
		res := atStatus(t, reservation.StatusScheduled)
		afterStart := res.Date().At(res.TimeRange().Start(), time.UTC).Add(time.Minute)

		err := res.Cancel(reservation.ReasonOther, "", afterStart)

		assert.ErrorIs(t, err, reservation.ErrNotUpcoming)
	})
}

func TestAdministrativeFlow(t *testing.T) {
	t.Run("full happy path", func(t *testing.T) {
		res := atStatus(t, reservation.StatusScheduled)

		require.NoError(t, res.Confirm(testNow))
		require.NoError(t, res.Start(testNow.Add(time.Hour)))
		require.NoError(t, res.Complete(testNow.Add(2*time.Hour)))

		assert.Equal(t, reservation.StatusCompleted, res.Status())
		assert.Equal(t, testNow.Add(2*time.Hour), res.UpdatedAt())
	})

	t.Run("complete straight from confirmed", func(t *testing.T) {
		res := atStatus(t, reservation.StatusConfirmed)
		require.NoError(t, res.Complete(testNow))
		assert.Equal(t, reservation.StatusCompleted, res.Status())
	})

	t.Run("no-show is terminal", func(t *testing.T) {
		res := atStatus(t, reservation.StatusScheduled)
		require.NoError(t, res.MarkNoShow(testNow))

		assert.ErrorIs(t, res.Confirm(testNow), reservation.ErrInvalidTransition)
		assert.ErrorIs(t, res.Complete(testNow), reservation.ErrInvalidTransition)
	})
}
