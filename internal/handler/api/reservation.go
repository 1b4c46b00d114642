package api

import (
	"context"
	"errors"
	"net/http"

	"caresched/internal/domain/reservation"
	reqdto "caresched/internal/handler/dto/request"
	"caresched/internal/handler/httperr"
	"caresched/internal/usecase/commands"
	"caresched/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	commands commands.ReservationCommands
	queries  queries.ReservationQueries
}

func NewReservationHandler(cmds commands.ReservationCommands, qrys queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{
		commands: cmds,
		queries:  qrys,
	}
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	params, err := req.ToParams(ownerID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	res, err := h.commands.CreateReservation(c.Request.Context(), params)
	if err != nil {
		h.respondCommandError(c, err)
		return
	}

	h.respondView(c, http.StatusCreated, res.ID())
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}
	h.respondView(c, http.StatusOK, id)
}

func (h *ReservationHandler) ListOwnerReservations(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	views, err := h.queries.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, views)
}

// AvailableSlots enumerates free candidate slots on a date. The optional
// exclude parameter removes one reservation from the conflict set while its
// owner is picking a new slot for it.
func (h *ReservationHandler) AvailableSlots(c *gin.Context) {
	date, err := reservation.ParseDate(c.Query("date"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid or missing date parameter", nil)
		return
	}

	excludeID := uuid.Nil
	if raw := c.Query("exclude"); raw != "" {
		excludeID, err = uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid exclude parameter", nil)
			return
		}
	}

	slots, err := h.queries.AvailableSlots(c.Request.Context(), date, excludeID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":  date.String(),
		"slots": slots,
	})
}

func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	h.runTransition(c, h.commands.ConfirmReservation)
}

func (h *ReservationHandler) StartReservation(c *gin.Context) {
	h.runTransition(c, h.commands.StartReservation)
}

func (h *ReservationHandler) CompleteReservation(c *gin.Context) {
	h.runTransition(c, h.commands.CompleteReservation)
}

func (h *ReservationHandler) MarkNoShow(c *gin.Context) {
	h.runTransition(c, h.commands.MarkNoShow)
}

func (h *ReservationHandler) RescheduleReservation(c *gin.Context) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}

	var req reqdto.RescheduleReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	date, start, end, err := req.Parse()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	res, err := h.commands.RescheduleReservation(c.Request.Context(), id, date, start, end)
	if err != nil {
		h.respondCommandError(c, err)
		return
	}
	h.respondView(c, http.StatusOK, res.ID())
}

func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}

	var req reqdto.CancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	res, err := h.commands.CancelReservation(
		c.Request.Context(), id,
		reservation.CancelReason(req.Reason),
		req.GetNote(),
	)
	if err != nil {
		h.respondCommandError(c, err)
		return
	}
	h.respondView(c, http.StatusOK, res.ID())
}

func (h *ReservationHandler) runTransition(
	c *gin.Context,
	cmd func(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error),
) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}

	res, err := cmd(c.Request.Context(), id)
	if err != nil {
		h.respondCommandError(c, err)
		return
	}
	h.respondView(c, http.StatusOK, res.ID())
}

func (h *ReservationHandler) respondView(c *gin.Context, status int, id uuid.UUID) {
	view, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queries.ErrReservationNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(status, view)
}

func (h *ReservationHandler) respondCommandError(c *gin.Context, err error) {
	var trErr *reservation.InvalidTransitionError

	switch {
	case errors.Is(err, commands.ErrSlotUnavailable):
		httperr.AbortWithError(c, http.StatusConflict, err,
			"Requested slot is unavailable", nil)
	case errors.As(err, &trErr):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			"Transition not allowed", gin.H{
				"current_status":   trErr.From.String(),
				"attempted_status": trErr.To.String(),
			})
	case errors.Is(err, reservation.ErrNotUpcoming):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			"Reservation window has already started", nil)
	case errors.Is(err, reservation.ErrInvalidCancelReason):
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			"Invalid cancellation reason", nil)
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			"Invalid reservation data", nil)
	case errors.Is(err, commands.ErrReservationNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			"Reservation not found", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err,
			"Internal server error", nil)
	}
}

func (h *ReservationHandler) ownerID(c *gin.Context) (uuid.UUID, bool) {
	// Identity is established by the upstream application layer; the engine
	// trusts the header as already authenticated.
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errors.New("missing X-User-ID header"),
			"Missing X-User-ID header", nil)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid X-User-ID header", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ReservationHandler) reservationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}
