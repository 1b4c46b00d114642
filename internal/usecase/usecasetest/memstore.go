// Package usecasetest provides an in-memory ReservationStore for unit tests.
// It mirrors the Postgres store's serialization contract: callers targeting
// the same date queue behind one lock, different dates run concurrently, and
// a failed closure leaves nothing behind.
package usecasetest

import (
	"context"
	"sync"
	"time"

	"caresched/internal/domain/reservation"
	"caresched/internal/pkg/errs"
	"caresched/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrNotFound = errs.New("reservation not found")

type Notification struct {
	Topic   string
	Payload []byte
	RunAt   time.Time
}

type MemStore struct {
	mu        sync.Mutex
	dateLocks map[string]*sync.Mutex
	rows      map[uuid.UUID]*reservation.Reservation

	notifications []Notification
}

func NewMemStore() *MemStore {
	return &MemStore{
		dateLocks: make(map[string]*sync.Mutex),
		rows:      make(map[uuid.UUID]*reservation.Reservation),
	}
}

func (s *MemStore) WithDateLock(_ context.Context, date reservation.Date, fn func(tx shared.Tx) error) error {
	lock := s.lockFor(date)
	lock.Lock()
	defer lock.Unlock()
	return s.runTx(fn)
}

func (s *MemStore) WithTx(_ context.Context, fn func(tx shared.Tx) error) error {
	return s.runTx(fn)
}

// runTx buffers writes and applies them only when the closure succeeds.
func (s *MemStore) runTx(fn func(tx shared.Tx) error) error {
	tx := &memTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, res := range tx.writes {
		s.rows[res.ID()] = clone(res)
	}
	s.notifications = append(s.notifications, tx.notifications...)
	return nil
}

func (s *MemStore) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

func (s *MemStore) ListByDate(_ context.Context, date reservation.Date) ([]*reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listByDateLocked(date), nil
}

func (s *MemStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*reservation.Reservation
	for _, res := range s.rows {
		if res.OwnerID() == ownerID {
			result = append(result, clone(res))
		}
	}
	return result, nil
}

// Seed inserts a reservation directly, bypassing conflict checks.
func (s *MemStore) Seed(res *reservation.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[res.ID()] = clone(res)
}

func (s *MemStore) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *MemStore) lockFor(date reservation.Date) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.dateLocks[date.String()]
	if !ok {
		lock = &sync.Mutex{}
		s.dateLocks[date.String()] = lock
	}
	return lock
}

func (s *MemStore) findLocked(id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(res), nil
}

func (s *MemStore) listByDateLocked(date reservation.Date) []*reservation.Reservation {
	var result []*reservation.Reservation
	for _, res := range s.rows {
		if res.Date().Equal(date) {
			result = append(result, clone(res))
		}
	}
	return result
}

type memTx struct {
	store         *MemStore
	writes        []*reservation.Reservation
	notifications []Notification
}

func (t *memTx) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.findLocked(id)
}

func (t *memTx) ListByDate(_ context.Context, date reservation.Date) ([]*reservation.Reservation, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.listByDateLocked(date), nil
}

func (t *memTx) Create(_ context.Context, res *reservation.Reservation) error {
	t.writes = append(t.writes, clone(res))
	return nil
}

func (t *memTx) Update(_ context.Context, res *reservation.Reservation) error {
	t.store.mu.Lock()
	_, exists := t.store.rows[res.ID()]
	t.store.mu.Unlock()
	if !exists {
		return ErrNotFound
	}
	t.writes = append(t.writes, clone(res))
	return nil
}

func (t *memTx) EnqueueNotification(_ context.Context, topic string, payload []byte, runAt time.Time) error {
	t.notifications = append(t.notifications, Notification{
		Topic:   topic,
		Payload: payload,
		RunAt:   runAt,
	})
	return nil
}

// clone deep-copies so callers can never mutate stored state through a
// shared pointer.
func clone(res *reservation.Reservation) *reservation.Reservation {
	var reason *reservation.CancelReason
	if r := res.CancelReason(); r != nil {
		v := *r
		reason = &v
	}
	var cancelledAt *time.Time
	if ts := res.CancelledAt(); ts != nil {
		v := *ts
		cancelledAt = &v
	}
	var confirmedAt *time.Time
	if ts := res.ConfirmedAt(); ts != nil {
		v := *ts
		confirmedAt = &v
	}

	return reservation.ReconstructReservation(
		res.ID(), res.OwnerID(),
		res.Category(), res.Date(), res.TimeRange(),
		res.Priority(), res.Status(),
		reason, res.CancelNote(),
		cancelledAt, confirmedAt,
		res.CreatedAt(), res.UpdatedAt(),
	)
}
