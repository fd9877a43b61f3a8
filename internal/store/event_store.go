package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/slovakpatriot/arena/internal/bracket"
)

// EventStore persists events, their bracket columns and their registrations.
// Writes take the transaction they belong to; reads take either the pool or
// a transaction.
type EventStore struct {
	db *sqlx.DB
}

const (
	createEventQuery = `
		INSERT INTO events (id, name, description, mode, elimination_type, status, starts_at, entry_fee,
			check_in_required, stream_url, lobby_url, created_at)
		VALUES (:id, :name, :description, :mode, :elimination_type, :status, :starts_at, :entry_fee,
			:check_in_required, :stream_url, :lobby_url, :created_at)
	`
	updateStatusQuery = `
		UPDATE events SET
		status = :status,
		finished_at = :finished_at,
		stream_url = :stream_url,
		lobby_url = :lobby_url
		WHERE id = :id
	`
	saveBracketQuery = `
		UPDATE events SET
		bracket = :bracket,
		loser_bracket = :loser_bracket,
		winner_id = :winner_id,
		winner_name = :winner_name
		WHERE id = :id
	`
	createRegistrationQuery = `
		INSERT INTO registrations (id, event_id, kind, user_id, username, team_id, team_name, checked_in,
			paid_entry, position, registered_at)
		VALUES (:id, :event_id, :kind, :user_id, :username, :team_id, :team_name, :checked_in,
			:paid_entry, :position, :registered_at)
	`
)

func NewEventStore(db *sqlx.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) CreateEvent(ctx context.Context, tx *sqlx.Tx, event *bracket.Event) error {
	_, err := tx.NamedExecContext(ctx, createEventQuery, event)
	return err
}

func (s *EventStore) GetEvent(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Event, error) {
	var event bracket.Event
	err := sqlx.GetContext(ctx, q, &event, "SELECT * FROM events WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventStore) ListEvents(ctx context.Context) ([]bracket.Event, error) {
	var events []bracket.Event
	err := s.db.SelectContext(ctx, &events, "SELECT * FROM events ORDER BY starts_at ASC, created_at ASC")
	return events, err
}

// UpdateStatus writes the status, finish time and links of the event.
func (s *EventStore) UpdateStatus(ctx context.Context, tx *sqlx.Tx, event *bracket.Event) error {
	res, err := tx.NamedExecContext(ctx, updateStatusQuery, event)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrEventNotFound, event.ID))
}

// SaveBracket writes the bracket columns and the recorded winner of the event.
func (s *EventStore) SaveBracket(ctx context.Context, tx *sqlx.Tx, event *bracket.Event) error {
	res, err := tx.NamedExecContext(ctx, saveBracketQuery, event)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrEventNotFound, event.ID))
}

// FinishedBefore returns the ids of finished events that finished before cutoff.
func (s *EventStore) FinishedBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		"SELECT id FROM events WHERE status = ? AND finished_at IS NOT NULL AND finished_at < ? ORDER BY finished_at ASC",
		bracket.EventFinished, cutoff.UTC())
	return ids, err
}

// DeleteEvent removes the event; registrations go with it through the foreign key.
func (s *EventStore) DeleteEvent(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrEventNotFound, id))
}

// GetRegistrations returns the registrations of an event in seed order.
func (s *EventStore) GetRegistrations(ctx context.Context, q sqlx.QueryerContext, eventID uuid.UUID) ([]bracket.Registration, error) {
	var regs []bracket.Registration
	err := sqlx.SelectContext(ctx, q, &regs, "SELECT * FROM registrations WHERE event_id = ? ORDER BY position ASC", eventID)
	return regs, err
}

// CreateRegistration appends the registration after the existing ones and
// sets its Position.
func (s *EventStore) CreateRegistration(ctx context.Context, tx *sqlx.Tx, reg *bracket.Registration) error {
	var next int
	err := tx.GetContext(ctx, &next, "SELECT COALESCE(MAX(position) + 1, 0) FROM registrations WHERE event_id = ?", reg.EventID)
	if err != nil {
		return err
	}
	reg.Position = next

	_, err = tx.NamedExecContext(ctx, createRegistrationQuery, reg)
	return err
}

func (s *EventStore) DeleteRegistration(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM registrations WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrRegistrationNotFound, id))
}

func (s *EventStore) SetCheckedIn(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, checkedIn bool) error {
	res, err := tx.ExecContext(ctx, "UPDATE registrations SET checked_in = ? WHERE id = ?", checkedIn, id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrRegistrationNotFound, id))
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
