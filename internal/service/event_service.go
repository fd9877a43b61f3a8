package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/slovakpatriot/arena/internal/bracket"
	"github.com/slovakpatriot/arena/internal/realtime"
	"github.com/slovakpatriot/arena/internal/store"
	users "github.com/slovakpatriot/arena/internal/user"
	"github.com/slovakpatriot/arena/internal/utils"
)

// Wallet moves entry fees in and out of user balances inside a registration
// transaction.
type Wallet interface {
	Debit(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64) error
	Credit(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64) error
}

// Windows are the time windows around an event's start.
type Windows struct {
	// CheckIn is how long before the start check-in opens.
	CheckIn time.Duration
	// RegistrationGrace is how long after the start registration stays open.
	RegistrationGrace time.Duration
}

type EventService struct {
	db        *sqlx.DB
	events    *store.EventStore
	users     *store.UserStore
	teams     *store.TeamStore
	wallet    Wallet
	publisher realtime.Publisher
	locks     *EventLocks
	clock     clockwork.Clock
	windows   Windows
}

func NewEventService(
	db *sqlx.DB,
	events *store.EventStore,
	userStore *store.UserStore,
	teams *store.TeamStore,
	wallet Wallet,
	publisher realtime.Publisher,
	locks *EventLocks,
	clock clockwork.Clock,
	windows Windows,
) *EventService {
	return &EventService{
		db:        db,
		events:    events,
		users:     userStore,
		teams:     teams,
		wallet:    wallet,
		publisher: publisher,
		locks:     locks,
		clock:     clock,
		windows:   windows,
	}
}

type CreateEventInput struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Mode            string    `json:"mode"`
	EliminationType string    `json:"eliminationType"`
	StartsAt        time.Time `json:"startsAt"`
	EntryFee        int64     `json:"entryFee"`
	CheckInRequired bool      `json:"checkInRequired"`
	StreamURL       *string   `json:"streamUrl"`
	LobbyURL        *string   `json:"lobbyUrl"`
}

type EventDetails struct {
	Event         *bracket.Event         `json:"event"`
	Registrations []bracket.Registration `json:"registrations"`
}

func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*bracket.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	if input.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: start time is required", ErrInvalidEvent)
	}
	if input.EntryFee < 0 {
		return nil, fmt.Errorf("%w: entry fee must not be negative", ErrInvalidEvent)
	}

	mode := bracket.Mode(input.Mode)
	switch mode {
	case "":
		mode = bracket.SoloMode
	case bracket.SoloMode, bracket.TeamMode:
	default:
		return nil, fmt.Errorf("%w: mode must be solo or team", ErrInvalidEvent)
	}

	eliminationType, err := bracket.ParseEliminationType(input.EliminationType)
	if err != nil {
		return nil, err
	}

	event := &bracket.Event{
		ID:              uuid.New(),
		Name:            name,
		Description:     strings.TrimSpace(input.Description),
		Mode:            mode,
		EliminationType: eliminationType,
		Status:          bracket.EventUpcoming,
		StartsAt:        input.StartsAt.UTC(),
		EntryFee:        input.EntryFee,
		CheckInRequired: input.CheckInRequired,
		StreamURL:       utils.TrimPtr(input.StreamURL),
		LobbyURL:        utils.TrimPtr(input.LobbyURL),
		CreatedAt:       s.clock.Now().UTC(),
	}

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.events.CreateEvent(ctx, tx, event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	slog.Info("event created", "event_id", event.ID, "name", event.Name, "elimination_type", event.EliminationType)
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]bracket.Event, error) {
	return s.events.ListEvents(ctx)
}

func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*EventDetails, error) {
	event, err := s.events.GetEvent(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	regs, err := s.events.GetRegistrations(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations: %w", err)
	}
	return &EventDetails{Event: event, Registrations: regs}, nil
}

// StatusUpdate moves an event to a new status. A nil link keeps the stored
// one and an empty link clears it.
type StatusUpdate struct {
	Status    bracket.EventStatus `json:"status"`
	StreamURL *string             `json:"streamUrl"`
	LobbyURL  *string             `json:"lobbyUrl"`
}

func (s *EventService) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error {
	if !update.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, update.Status)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		event, err := s.events.GetEvent(ctx, tx, id)
		if err != nil {
			return err
		}

		event.Status = update.Status
		event.FinishedAt = nil
		if update.Status == bracket.EventFinished {
			now := s.clock.Now().UTC()
			event.FinishedAt = &now
		}
		if update.StreamURL != nil {
			event.StreamURL = utils.TrimPtr(update.StreamURL)
		}
		if update.LobbyURL != nil {
			event.LobbyURL = utils.TrimPtr(update.LobbyURL)
		}
		return s.events.UpdateStatus(ctx, tx, event)
	})
}

// DeleteEvent removes the event with its registrations and bracket. Paid
// entries of an unfinished event are refunded.
func (s *EventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		event, err := s.events.GetEvent(ctx, tx, id)
		if err != nil {
			return err
		}
		if event.Status != bracket.EventFinished {
			regs, err := s.events.GetRegistrations(ctx, tx, id)
			if err != nil {
				return err
			}
			for i := range regs {
				if err := s.refund(ctx, tx, event, &regs[i]); err != nil {
					return err
				}
			}
		}
		return s.events.DeleteEvent(ctx, tx, id)
	})
}

// Register enters the user into the event: alone for a solo event, or with
// the team they captain for a team event.
func (s *EventService) Register(ctx context.Context, eventID, userID uuid.UUID) (*bracket.Registration, error) {
	unlock := s.locks.Lock(eventID)
	defer unlock()

	var reg *bracket.Registration
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		event, err := s.events.GetEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if event.Status != bracket.EventUpcoming {
			return ErrRegistrationNotOpen
		}
		if s.clock.Now().After(event.StartsAt.Add(s.windows.RegistrationGrace)) {
			return ErrRegistrationClosed
		}

		user, err := s.users.GetUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user.Restricted() {
			return ErrAccountRestricted
		}

		regs, err := s.events.GetRegistrations(ctx, tx, eventID)
		if err != nil {
			return err
		}
		for i := range regs {
			if regs[i].Covers(user.ID.String(), user.TeamID) {
				return ErrAlreadyRegistered
			}
		}

		reg = &bracket.Registration{
			ID:           uuid.New(),
			EventID:      eventID,
			Kind:         bracket.SoloRegistration,
			UserID:       user.ID.String(),
			Username:     user.Username,
			RegisteredAt: s.clock.Now().UTC(),
		}
		if event.Mode == bracket.TeamMode {
			team, err := s.captainedTeam(ctx, tx, user)
			if err != nil {
				return err
			}
			teamID := team.ID.String()
			reg.Kind = bracket.TeamRegistration
			reg.TeamID = &teamID
			reg.TeamName = &team.Name
		}

		if event.EntryFee > 0 {
			if err := s.wallet.Debit(ctx, tx, user.ID, event.EntryFee); err != nil {
				return err
			}
			reg.PaidEntry = true
		}

		return s.events.CreateRegistration(ctx, tx, reg)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("registered for event", "event_id", eventID, "participant_id", reg.ParticipantID(), "position", reg.Position)
	return reg, nil
}

func (s *EventService) captainedTeam(ctx context.Context, tx *sqlx.Tx, user *users.User) (*users.Team, error) {
	if user.TeamID == nil {
		return nil, ErrNotInTeam
	}
	team, err := s.teams.GetTeam(ctx, tx, *user.TeamID)
	if err != nil {
		return nil, err
	}
	if !team.IsCaptain(user) {
		return nil, ErrNotCaptain
	}
	return team, nil
}

// Unregister withdraws the user's entry before the event starts and refunds a
// paid entry fee.
func (s *EventService) Unregister(ctx context.Context, eventID, userID uuid.UUID) error {
	unlock := s.locks.Lock(eventID)
	defer unlock()

	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		event, err := s.events.GetEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if event.Status != bracket.EventUpcoming || !s.clock.Now().Before(event.StartsAt) {
			return ErrEventStarted
		}

		reg, err := s.ownRegistration(ctx, tx, eventID, userID)
		if err != nil {
			return err
		}
		if err := s.events.DeleteRegistration(ctx, tx, reg.ID); err != nil {
			return err
		}
		return s.refund(ctx, tx, event, reg)
	})
}

// Disqualify removes the entry covering the user, or their team, from the
// event. The entry fee is kept and the bracket is left as it is.
func (s *EventService) Disqualify(ctx context.Context, eventID, userID uuid.UUID) error {
	unlock := s.locks.Lock(eventID)
	defer unlock()

	var reg *bracket.Registration
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.events.GetEvent(ctx, tx, eventID); err != nil {
			return err
		}
		user, err := s.users.GetUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		regs, err := s.events.GetRegistrations(ctx, tx, eventID)
		if err != nil {
			return err
		}
		for i := range regs {
			if regs[i].Covers(user.ID.String(), user.TeamID) {
				reg = &regs[i]
				break
			}
		}
		if reg == nil {
			return ErrNotRegistered
		}
		return s.events.DeleteRegistration(ctx, tx, reg.ID)
	})
	if err != nil {
		return err
	}

	slog.Warn("participant disqualified", "event_id", eventID, "user_id", userID, "participant_id", reg.ParticipantID(), "paid_entry", reg.PaidEntry)
	return nil
}

func (s *EventService) refund(ctx context.Context, tx *sqlx.Tx, event *bracket.Event, reg *bracket.Registration) error {
	if !reg.PaidEntry || event.EntryFee == 0 {
		return nil
	}
	userID, err := uuid.Parse(reg.UserID)
	if err != nil {
		return fmt.Errorf("registration %s has invalid user id: %w", reg.ID, err)
	}
	return s.wallet.Credit(ctx, tx, userID, event.EntryFee)
}

// ownRegistration finds the registration covering the user. Team entries may
// only be managed by the captain who made them.
func (s *EventService) ownRegistration(ctx context.Context, tx *sqlx.Tx, eventID, userID uuid.UUID) (*bracket.Registration, error) {
	user, err := s.users.GetUserTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	regs, err := s.events.GetRegistrations(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	for i := range regs {
		if !regs[i].Covers(user.ID.String(), user.TeamID) {
			continue
		}
		if regs[i].UserID != user.ID.String() {
			return nil, ErrNotCaptain
		}
		return &regs[i], nil
	}
	return nil, ErrNotRegistered
}

// CheckIn marks the user's entry as present. It opens CheckIn before the
// start and refreshes every bracket slot holding the participant.
func (s *EventService) CheckIn(ctx context.Context, eventID, userID uuid.UUID) (*bracket.Registration, error) {
	unlock := s.locks.Lock(eventID)
	defer unlock()

	var reg *bracket.Registration
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		event, err := s.events.GetEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if event.Status == bracket.EventFinished || s.clock.Now().Before(event.StartsAt.Add(-s.windows.CheckIn)) {
			return ErrCheckInNotOpen
		}

		reg, err = s.ownRegistration(ctx, tx, eventID, userID)
		if err != nil {
			return err
		}
		if err := s.events.SetCheckedIn(ctx, tx, reg.ID, true); err != nil {
			return err
		}
		reg.CheckedIn = true

		if event.HasBracket() {
			state := event.State()
			if state.SetCheckIn(reg.ParticipantID(), true) > 0 {
				event.SetState(state)
				if err := s.events.SaveBracket(ctx, tx, event); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, realtime.CheckInUpdate, eventID, realtime.CheckInPayload{
		ParticipantID: reg.ParticipantID(),
		CheckedIn:     true,
	})
	return reg, nil
}

func publish(ctx context.Context, p realtime.Publisher, t realtime.MessageType, eventID uuid.UUID, payload any) {
	msg, err := realtime.NewMessage(t, eventID, payload)
	if err == nil {
		err = p.Publish(ctx, msg)
	}
	if err != nil {
		slog.Warn("failed to publish realtime message", "type", t, "event_id", eventID, "error", err)
	}
}
