package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/slovakpatriot/arena/internal/bracket"
	"github.com/slovakpatriot/arena/internal/realtime"
	"github.com/slovakpatriot/arena/internal/store"
)

// BracketService runs the bracket mutators of an event. Each call loads the
// event, mutates its bracket in memory and stores it in one transaction while
// holding the event's lock, then notifies subscribers.
type BracketService struct {
	db        *sqlx.DB
	events    *store.EventStore
	publisher realtime.Publisher
	locks     *EventLocks
}

func NewBracketService(db *sqlx.DB, events *store.EventStore, publisher realtime.Publisher, locks *EventLocks) *BracketService {
	return &BracketService{db: db, events: events, publisher: publisher, locks: locks}
}

// mutate applies fn to the event's bracket and persists the result when fn
// succeeds. fn sees a loaded event whose bracket has been generated unless
// allowEmpty is set.
func (s *BracketService) mutate(ctx context.Context, eventID uuid.UUID, allowEmpty bool, fn func(tx *sqlx.Tx, event *bracket.Event) error) (*bracket.Event, error) {
	unlock := s.locks.Lock(eventID)
	defer unlock()

	var event *bracket.Event
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		event, err = s.events.GetEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if !allowEmpty && !event.HasBracket() {
			return bracket.ErrBracketNotGenerated
		}
		if err := fn(tx, event); err != nil {
			return err
		}
		if err := s.events.SaveBracket(ctx, tx, event); err != nil {
			return fmt.Errorf("failed to save bracket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, realtime.BracketUpdate, eventID, event.State())
	return event, nil
}

// GenerateBracket seeds a new bracket from the event's registrations in
// registration order. An existing bracket is only replaced when force is set.
func (s *BracketService) GenerateBracket(ctx context.Context, eventID uuid.UUID, force bool) (bracket.State, error) {
	event, err := s.mutate(ctx, eventID, true, func(tx *sqlx.Tx, event *bracket.Event) error {
		if event.HasBracket() && !force {
			return bracket.ErrAlreadyGenerated
		}

		regs, err := s.events.GetRegistrations(ctx, tx, eventID)
		if err != nil {
			return err
		}
		participants, err := bracket.ResolveParticipants(regs)
		if err != nil {
			return err
		}

		event.SetState(bracket.Generate(participants, event.EliminationType))
		event.WinnerID = nil
		event.WinnerName = nil
		return nil
	})
	if err != nil {
		return bracket.State{}, err
	}

	slog.Info("bracket generated", "event_id", eventID, "rounds", len(event.Bracket), "matches", event.Bracket.MatchCount(), "force", force)
	return event.State(), nil
}

// RecordResult decides a match. When the event requires check-in, every
// participant present in the match must have checked in.
func (s *BracketService) RecordResult(ctx context.Context, eventID uuid.UUID, matchID, winnerID string) (bracket.Outcome, error) {
	var out bracket.Outcome
	_, err := s.mutate(ctx, eventID, false, func(tx *sqlx.Tx, event *bracket.Event) error {
		state := event.State()

		gate := bracket.CheckInGate{Required: event.CheckInRequired}
		if m, _, ok := state.Find(matchID); ok && !m.Decided() && (m.Participant1 != nil || m.Participant2 != nil) && !gate.Ready(m) {
			return fmt.Errorf("%w: %s", bracket.ErrCheckInPending, matchID)
		}

		var err error
		out, err = state.RecordResult(matchID, winnerID)
		if err != nil {
			return err
		}
		for _, p := range out.Stranded {
			slog.Warn("no open slot for participant", "event_id", eventID, "match_id", matchID, "participant_id", p.ID)
		}

		event.SetState(state)
		if champion := state.Champion(); out.Side == bracket.WinnersSide && out.Final && champion != nil {
			event.WinnerID = &champion.ID
			event.WinnerName = &champion.Name
			slog.Info("event champion decided", "event_id", eventID, "participant_id", champion.ID)
		}
		return nil
	})
	if err != nil {
		return bracket.Outcome{}, err
	}
	return out, nil
}

// ScheduleMatch stores the scheduled time of a match verbatim.
func (s *BracketService) ScheduleMatch(ctx context.Context, eventID uuid.UUID, matchID, scheduledTime string) error {
	_, err := s.mutate(ctx, eventID, false, func(_ *sqlx.Tx, event *bracket.Event) error {
		state := event.State()
		if err := state.ScheduleMatch(matchID, scheduledTime); err != nil {
			return err
		}
		event.SetState(state)
		return nil
	})
	if err != nil {
		return err
	}

	publish(ctx, s.publisher, realtime.MatchScheduled, eventID, realtime.MatchScheduledPayload{
		MatchID:       matchID,
		ScheduledTime: scheduledTime,
	})
	return nil
}

// OverrideParticipants replaces the participants of a winner bracket match
// with registered participants of the event. A nil id keeps the slot and an
// empty id clears it.
func (s *BracketService) OverrideParticipants(ctx context.Context, eventID uuid.UUID, matchID string, participant1ID, participant2ID *string) (bracket.Match, error) {
	var m bracket.Match
	_, err := s.mutate(ctx, eventID, false, func(tx *sqlx.Tx, event *bracket.Event) error {
		regs, err := s.events.GetRegistrations(ctx, tx, eventID)
		if err != nil {
			return err
		}

		state := event.State()
		m, err = state.OverrideParticipants(matchID, participant1ID, participant2ID, bracket.Registry(regs))
		if err != nil {
			return err
		}
		event.SetState(state)
		return nil
	})
	if err != nil {
		return bracket.Match{}, err
	}
	return m, nil
}
