//go:build unit

package sla_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"caresched/internal/domain/reservation"
	"caresched/internal/domain/sla"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures log records so tests can assert on warnings.
type recordingHandler struct {
	records *[]slog.Record
}

func newRecordingHandler() recordingHandler {
	return recordingHandler{records: &[]slog.Record{}}
}

func (h recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return nil
}

func (h recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h recordingHandler) WithGroup(string) slog.Handler      { return h }

func quietEstimator() *sla.Estimator {
	return sla.NewEstimator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDeadline(t *testing.T) {
	from := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	estimator := quietEstimator()

	t.Run("priority table", func(t *testing.T) {
		cases := []struct {
			priority reservation.Priority
			want     time.Time
		}{
			{priority: reservation.PriorityEmergency, want: from.Add(4 * time.Hour)},
			{priority: reservation.PriorityHigh, want: from.Add(24 * time.Hour)},
			{priority: reservation.PriorityMedium, want: from.Add(48 * time.Hour)},
			{priority: reservation.PriorityLow, want: from.Add(120 * time.Hour)},
		}
		for _, tc := range cases {
			t.Run(tc.priority.String(), func(t *testing.T) {
				assert.Equal(t, tc.want, estimator.Deadline(tc.priority, from))
			})
		}
	})

	t.Run("unknown code falls back to the default and warns", func(t *testing.T) {
		handler := newRecordingHandler()
		noisy := sla.NewEstimator(slog.New(handler))

		got := noisy.Deadline(reservation.Priority("asap"), from)

		assert.Equal(t, from.Add(reservation.DefaultSLA), got)
		require.Len(t, *handler.records, 1)
		rec := (*handler.records)[0]
		assert.Equal(t, slog.LevelWarn, rec.Level)

		attrs := map[string]string{}
		rec.Attrs(func(a slog.Attr) bool {
			attrs[a.Key] = a.Value.String()
			return true
		})
		assert.Equal(t, "asap", attrs["priority"])
	})

	t.Run("known codes log nothing", func(t *testing.T) {
		handler := newRecordingHandler()
		noisy := sla.NewEstimator(slog.New(handler))

		noisy.Deadline(reservation.PriorityHigh, from)

		assert.Empty(t, *handler.records)
	})
}

func TestIsOverdue(t *testing.T) {
	deadline := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		now    time.Time
		status reservation.Status
		want   bool
	}{
		{
			name:   "before deadline",
			now:    deadline.Add(-time.Minute),
			status: reservation.StatusScheduled,
			want:   false,
		},
		{
			name:   "exactly at deadline",
			now:    deadline,
			status: reservation.StatusScheduled,
			want:   false,
		},
		{
			name:   "past deadline while scheduled",
			now:    deadline.Add(time.Minute),
			status: reservation.StatusScheduled,
			want:   true,
		},
		{
			name:   "past deadline while confirmed",
			now:    deadline.Add(time.Hour),
			status: reservation.StatusConfirmed,
			want:   true,
		},
		{
			name:   "past deadline while in progress",
			now:    deadline.Add(time.Hour),
			status: reservation.StatusInProgress,
			want:   true,
		},
		{
			name:   "completion ends the obligation",
			now:    deadline.Add(time.Hour),
			status: reservation.StatusCompleted,
			want:   false,
		},
		{
			name:   "cancellation ends the obligation",
			now:    deadline.Add(time.Hour),
			status: reservation.StatusCancelled,
			want:   false,
		},
		{
			name:   "no-show stays overdue",
			now:    deadline.Add(time.Hour),
			status: reservation.StatusNoShow,
			want:   true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sla.IsOverdue(deadline, tc.now, tc.status))
		})
	}
}
