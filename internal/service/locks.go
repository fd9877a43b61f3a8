package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// EventLocks serializes mutations per event. Entries are dropped once no
// caller holds or waits for them.
type EventLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*eventLock
}

type eventLock struct {
	mu   sync.Mutex
	refs int
}

func NewEventLocks() *EventLocks {
	return &EventLocks{locks: make(map[uuid.UUID]*eventLock)}
}

// Lock blocks until the event's critical section is free and returns the
// function that releases it.
func (l *EventLocks) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	el, ok := l.locks[id]
	if !ok {
		el = &eventLock{}
		l.locks[id] = el
	}
	el.refs++
	l.mu.Unlock()

	el.mu.Lock()
	return func() {
		el.mu.Unlock()
		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *EventLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
