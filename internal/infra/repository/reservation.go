package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"caresched/internal/domain/reservation"
	"caresched/internal/infra"
	"caresched/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Advisory lock namespace for per-date reservation writes. Arbitrary but
// fixed; keeps the engine's locks apart from any other advisory user.
const dateLockClass = int32(7431)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReservationStore is the Postgres persistence collaborator. WithDateLock
// takes a transaction-scoped advisory lock keyed by the calendar date, so the
// conflict check and the subsequent write are atomic against every other
// engine instance targeting that date, while other dates proceed untouched.
type ReservationStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReservationStore(pool *pgxpool.Pool, logger *slog.Logger) *ReservationStore {
	return &ReservationStore{
		pool:   pool,
		logger: logger,
	}
}

func (s *ReservationStore) WithDateLock(ctx context.Context, date reservation.Date, fn func(tx shared.Tx) error) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, dateLockClass, dateLockKey(date)); err != nil {
			return infra.WrapRepoErr("failed to acquire date lock", err)
		}
		return fn(&txStore{q: tx})
	})
}

func (s *ReservationStore) WithTx(ctx context.Context, fn func(tx shared.Tx) error) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return fn(&txStore{q: tx})
	})
}

func (s *ReservationStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return infra.WrapRepoErr("failed to begin transaction", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("failed to rollback transaction", "error", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr("failed to commit transaction", err)
	}
	return nil
}

func (s *ReservationStore) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return findByID(ctx, s.pool, id)
}

func (s *ReservationStore) ListByDate(ctx context.Context, date reservation.Date) ([]*reservation.Reservation, error) {
	return listByDate(ctx, s.pool, date)
}

func (s *ReservationStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*reservation.Reservation, error) {
	rows, err := s.pool.Query(ctx, selectColumns+`
		FROM reservations
		WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations by owner", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// dateLockKey packs a date into an int32 advisory lock key (yyyymmdd).
func dateLockKey(d reservation.Date) int32 {
	return int32(d.Year()*10000 + int(d.Month())*100 + d.Day())
}

// txStore runs the shared.Tx operations on an open pgx transaction.
type txStore struct {
	q pgx.Tx
}

func (t *txStore) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return findByID(ctx, t.q, id)
}

func (t *txStore) ListByDate(ctx context.Context, date reservation.Date) ([]*reservation.Reservation, error) {
	return listByDate(ctx, t.q, date)
}

func (t *txStore) Create(ctx context.Context, res *reservation.Reservation) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO reservations (
			id, owner_id, category, day, start_min, end_min,
			priority, status, cancel_reason, cancel_note,
			cancelled_at, confirmed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		res.ID(),
		res.OwnerID(),
		res.Category().String(),
		dateToPg(res.Date()),
		int16(res.TimeRange().Start()),
		int16(res.TimeRange().End()),
		res.Priority().String(),
		res.Status().String(),
		reasonToPg(res.CancelReason()),
		noteToPg(res.CancelNote()),
		res.CancelledAt(),
		res.ConfirmedAt(),
		res.CreatedAt(),
		res.UpdatedAt(),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return infra.WrapRepoErr("reservation already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (t *txStore) Update(ctx context.Context, res *reservation.Reservation) error {
	tag, err := t.q.Exec(ctx, `
		UPDATE reservations SET
			day = $2, start_min = $3, end_min = $4,
			priority = $5, status = $6,
			cancel_reason = $7, cancel_note = $8,
			cancelled_at = $9, confirmed_at = $10, updated_at = $11
		WHERE id = $1`,
		res.ID(),
		dateToPg(res.Date()),
		int16(res.TimeRange().Start()),
		int16(res.TimeRange().End()),
		res.Priority().String(),
		res.Status().String(),
		reasonToPg(res.CancelReason()),
		noteToPg(res.CancelNote()),
		res.CancelledAt(),
		res.ConfirmedAt(),
		res.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (t *txStore) EnqueueNotification(ctx context.Context, topic string, payload []byte, runAt time.Time) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO notification_jobs (topic, payload, run_at)
		VALUES ($1, $2, $3)`,
		topic, payload, runAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to enqueue notification job", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, owner_id, category, day, start_min, end_min,
	       priority, status, cancel_reason, cancel_note,
	       cancelled_at, confirmed_at, created_at, updated_at`

func findByID(ctx context.Context, q querier, id uuid.UUID) (*reservation.Reservation, error) {
	row := q.QueryRow(ctx, selectColumns+`
		FROM reservations
		WHERE id = $1`, id)

	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by id", err)
	}
	return res, nil
}

func listByDate(ctx context.Context, q querier, date reservation.Date) ([]*reservation.Reservation, error) {
	rows, err := q.Query(ctx, selectColumns+`
		FROM reservations
		WHERE day = $1
		ORDER BY start_min`, dateToPg(date))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations by date", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func scanAll(rows pgx.Rows) ([]*reservation.Reservation, error) {
	var result []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation row", err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservation rows", err)
	}
	return result, nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id, ownerID              uuid.UUID
		category, priority       string
		status                   string
		day                      time.Time
		startMin, endMin         int16
		cancelReason, cancelNote *string
		cancelledAt, confirmedAt *time.Time
		createdAt, updatedAt     time.Time
	)

	err := row.Scan(
		&id, &ownerID, &category, &day, &startMin, &endMin,
		&priority, &status, &cancelReason, &cancelNote,
		&cancelledAt, &confirmedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	timeRange, err := reservation.NewTimeRange(
		reservation.TimeOfDay(startMin),
		reservation.TimeOfDay(endMin),
	)
	if err != nil {
		return nil, err
	}

	var reason *reservation.CancelReason
	if cancelReason != nil {
		r := reservation.CancelReason(*cancelReason)
		reason = &r
	}
	note := ""
	if cancelNote != nil {
		note = *cancelNote
	}

	return reservation.ReconstructReservation(
		id, ownerID,
		reservation.Category(category),
		reservation.DateOf(day),
		timeRange,
		reservation.Priority(priority),
		reservation.Status(status),
		reason, note,
		cancelledAt, confirmedAt,
		createdAt, updatedAt,
	), nil
}

func dateToPg(d reservation.Date) time.Time {
	return d.At(0, time.UTC)
}

func reasonToPg(r *reservation.CancelReason) *string {
	if r == nil {
		return nil
	}
	s := r.String()
	return &s
}

func noteToPg(note string) *string {
	if note == "" {
		return nil
	}
	return &note
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
