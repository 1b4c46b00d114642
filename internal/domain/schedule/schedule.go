// Package schedule enumerates candidate slots within working hours and
// decides interval conflicts. Both sides share one overlap predicate so they
// cannot diverge.
package schedule

import (
	"errors"
	"time"

	"caresched/internal/domain/reservation"

	"github.com/google/uuid"
)

var ErrInvalidConfig = errors.New("invalid schedule configuration")

// Config is the working-hours window candidate slots are generated within and
// the fixed duration of each slot.
type Config struct {
	WorkdayStart reservation.TimeOfDay
	WorkdayEnd   reservation.TimeOfDay
	SlotDuration time.Duration
}

func NewConfig(start, end reservation.TimeOfDay, slotDuration time.Duration) (Config, error) {
	if !start.Before(end) {
		return Config{}, ErrInvalidConfig
	}
	if slotDuration < time.Minute || slotDuration%time.Minute != 0 {
		return Config{}, ErrInvalidConfig
	}
	return Config{
		WorkdayStart: start,
		WorkdayEnd:   end,
		SlotDuration: slotDuration,
	}, nil
}

// Slot is a fixed-duration candidate interval within working hours.
type Slot struct {
	Start reservation.TimeOfDay
	End   reservation.TimeOfDay
	Label string
}

// Busy is the projection of an existing reservation the conflict detector
// compares against.
type Busy struct {
	ID    uuid.UUID
	Range reservation.TimeRange
}

// BusyIntervals projects the reservations that occupy time on a date:
// cancelled reservations release their slot, and excludeID (when non-nil
// uuid) removes one reservation from the set for reschedule-in-place.
func BusyIntervals(reservations []*reservation.Reservation, excludeID uuid.UUID) []Busy {
	busy := make([]Busy, 0, len(reservations))
	for _, r := range reservations {
		if !r.Status().IsActive() {
			continue
		}
		if excludeID != uuid.Nil && r.ID() == excludeID {
			continue
		}
		busy = append(busy, Busy{ID: r.ID(), Range: r.TimeRange()})
	}
	return busy
}

// HasConflict reports whether the candidate interval overlaps any busy
// interval under the half-open rule: touching endpoints do not conflict.
func HasConflict(candidate reservation.TimeRange, busy []Busy) bool {
	for _, b := range busy {
		if candidate.Overlaps(b.Range) {
			return true
		}
	}
	return false
}

// AvailableSlots walks the workday from its start in SlotDuration steps and
// keeps every candidate that fits entirely within the window and conflicts
// with none of the busy intervals. The result is ordered by start time and
// recomputed fresh on every call. An empty result is a valid outcome, not an
// error.
func AvailableSlots(cfg Config, busy []Busy) []Slot {
	slots := make([]Slot, 0)
	for cursor := cfg.WorkdayStart; !cursor.Add(cfg.SlotDuration).After(cfg.WorkdayEnd); cursor = cursor.Add(cfg.SlotDuration) {
		candidate, err := reservation.NewTimeRange(cursor, cursor.Add(cfg.SlotDuration))
		if err != nil {
			break
		}
		if HasConflict(candidate, busy) {
			continue
		}
		slots = append(slots, Slot{
			Start: candidate.Start(),
			End:   candidate.End(),
			Label: candidate.String(),
		})
	}
	return slots
}
