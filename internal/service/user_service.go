package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/markbates/goth"
	"github.com/slovakpatriot/arena/internal/store"
	users "github.com/slovakpatriot/arena/internal/user"
	"github.com/slovakpatriot/arena/internal/utils"
)

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
	teams *store.TeamStore
	clock clockwork.Clock
}

func NewUserService(db *sqlx.DB, store *store.UserStore, teams *store.TeamStore, clock clockwork.Clock) *UserService {
	return &UserService{db: db, store: store, teams: teams, clock: clock}
}

// FindOrCreateUserByProvider returns the user linked to the OAuth identity,
// creating it on first login and refreshing its name and avatar afterwards.
func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	username := gothUser.NickName
	if username == "" {
		username = gothUser.Name
	}

	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)
	if err == nil {
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL || (username != "" && user.Username != username) {
			user.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			if username != "" {
				user.Username = username
			}
			if err := s.store.UpdateUserNameAndAvatar(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to update user: %w", err)
			}
		}
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	newUser := &users.User{
		ID:         uuid.New(),
		Email:      gothUser.Email,
		Username:   username,
		Provider:   utils.Ptr(gothUser.Provider),
		ProviderID: utils.Ptr(gothUser.UserID),
		AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
		Status:     users.StatusActive,
		CreatedAt:  s.clock.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return newUser, nil
}

// CreateTeam creates a team captained by the user and makes the user its
// first member.
func (s *UserService) CreateTeam(ctx context.Context, userID uuid.UUID, name string) (*users.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	var team *users.Team
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		user, err := s.store.GetUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user.TeamID != nil {
			return ErrAlreadyInTeam
		}

		team = &users.Team{ID: uuid.New(), Name: name, CaptainID: user.ID.String(), CreatedAt: s.clock.Now().UTC()}
		if err := s.teams.CreateTeam(ctx, tx, team); err != nil {
			return err
		}
		return s.store.SetTeam(ctx, tx, user.ID, utils.Ptr(team.ID.String()))
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// JoinTeam adds the user to an existing team.
func (s *UserService) JoinTeam(ctx context.Context, userID uuid.UUID, teamID string) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		user, err := s.store.GetUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user.TeamID != nil {
			return ErrAlreadyInTeam
		}
		team, err := s.teams.GetTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		return s.store.SetTeam(ctx, tx, user.ID, utils.Ptr(team.ID.String()))
	})
}

// SetStatus moderates an account. Suspended and banned users cannot register
// for events.
func (s *UserService) SetStatus(ctx context.Context, userID uuid.UUID, status users.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidUserStatus, status)
	}
	if err := s.store.SetStatus(ctx, userID, status); err != nil {
		return err
	}
	slog.Info("user status changed", "user_id", userID, "status", status)
	return nil
}

// LeaveTeam removes a member from their team. The captain has to transfer
// captaincy or disband instead.
func (s *UserService) LeaveTeam(ctx context.Context, userID uuid.UUID) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		user, err := s.store.GetUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user.TeamID == nil {
			return ErrNotInTeam
		}
		team, err := s.teams.GetTeam(ctx, tx, *user.TeamID)
		if err != nil {
			return err
		}
		if team.IsCaptain(user) {
			return ErrCaptainCannotLeave
		}
		if err := s.ensureUnregistered(ctx, tx, team); err != nil {
			return err
		}
		return s.store.SetTeam(ctx, tx, user.ID, nil)
	})
}

// KickMember removes memberID from the team captained by captainID.
func (s *UserService) KickMember(ctx context.Context, captainID uuid.UUID, teamID string, memberID uuid.UUID) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		team, err := s.captainedUnregistered(ctx, tx, captainID, teamID)
		if err != nil {
			return err
		}
		if memberID == captainID {
			return ErrCaptainCannotLeave
		}
		if _, err := s.member(ctx, tx, team, memberID); err != nil {
			return err
		}
		return s.store.SetTeam(ctx, tx, memberID, nil)
	})
}

// TransferCaptain hands the team over to another member.
func (s *UserService) TransferCaptain(ctx context.Context, captainID uuid.UUID, teamID string, newCaptainID uuid.UUID) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		team, err := s.captainedUnregistered(ctx, tx, captainID, teamID)
		if err != nil {
			return err
		}
		if _, err := s.member(ctx, tx, team, newCaptainID); err != nil {
			return err
		}
		return s.teams.SetCaptain(ctx, tx, team.ID.String(), newCaptainID.String())
	})
}

// DisbandTeam deletes the team and releases every member.
func (s *UserService) DisbandTeam(ctx context.Context, captainID uuid.UUID, teamID string) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		team, err := s.captainedUnregistered(ctx, tx, captainID, teamID)
		if err != nil {
			return err
		}
		return s.teams.DeleteTeam(ctx, tx, team.ID.String())
	})
}

// captainedUnregistered loads the team, checks userID captains it and that it
// holds no open event registration.
func (s *UserService) captainedUnregistered(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, teamID string) (*users.Team, error) {
	user, err := s.store.GetUserTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	team, err := s.teams.GetTeam(ctx, tx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsCaptain(user) {
		return nil, ErrNotCaptain
	}
	if err := s.ensureUnregistered(ctx, tx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *UserService) ensureUnregistered(ctx context.Context, tx *sqlx.Tx, team *users.Team) error {
	registered, err := s.teams.Registered(ctx, tx, team.ID.String())
	if err != nil {
		return err
	}
	if registered {
		return ErrTeamRegistered
	}
	return nil
}

func (s *UserService) member(ctx context.Context, tx *sqlx.Tx, team *users.Team, userID uuid.UUID) (*users.User, error) {
	user, err := s.store.GetUserTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if user.TeamID == nil || *user.TeamID != team.ID.String() {
		return nil, ErrNotTeamMember
	}
	return user, nil
}
