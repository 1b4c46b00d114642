package request

import (
	"caresched/internal/domain/reservation"
	"caresched/internal/usecase/commands"

	"github.com/google/uuid"
)

// The surrounding application layer delivers raw strings; these DTOs parse
// them into the engine's structured values before anything crosses the
// usecase boundary.

type CreateReservationRequest struct {
	Category string `json:"category" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Start    string `json:"start" binding:"required"`
	End      string `json:"end" binding:"required"`
	Priority string `json:"priority" binding:"required"`
}

func (r CreateReservationRequest) ToParams(ownerID uuid.UUID) (commands.CreateReservationParams, error) {
	date, err := reservation.ParseDate(r.Date)
	if err != nil {
		return commands.CreateReservationParams{}, err
	}
	start, err := reservation.ParseTimeOfDay(r.Start)
	if err != nil {
		return commands.CreateReservationParams{}, err
	}
	end, err := reservation.ParseTimeOfDay(r.End)
	if err != nil {
		return commands.CreateReservationParams{}, err
	}

	priority, ok := reservation.ParsePriority(r.Priority)
	if !ok {
		return commands.CreateReservationParams{}, reservation.ErrInvalidPriority
	}

	return commands.CreateReservationParams{
		OwnerID:  ownerID,
		Category: reservation.Category(r.Category),
		Date:     date,
		Start:    start,
		End:      end,
		Priority: priority,
	}, nil
}

type RescheduleReservationRequest struct {
	Date  string `json:"date" binding:"required"`
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

func (r RescheduleReservationRequest) Parse() (reservation.Date, reservation.TimeOfDay, reservation.TimeOfDay, error) {
	date, err := reservation.ParseDate(r.Date)
	if err != nil {
		return reservation.Date{}, 0, 0, err
	}
	start, err := reservation.ParseTimeOfDay(r.Start)
	if err != nil {
		return reservation.Date{}, 0, 0, err
	}
	end, err := reservation.ParseTimeOfDay(r.End)
	if err != nil {
		return reservation.Date{}, 0, 0, err
	}
	return date, start, end, nil
}

type CancelReservationRequest struct {
	Reason string  `json:"reason" binding:"required"`
	Note   *string `json:"note,omitempty"`
}

func (r CancelReservationRequest) GetNote() string {
	if r.Note == nil {
		return ""
	}
	return *r.Note
}
