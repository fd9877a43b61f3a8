package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/slovakpatriot/arena/internal/bracket"
	"github.com/slovakpatriot/arena/internal/realtime"
	"github.com/slovakpatriot/arena/internal/store"
	users "github.com/slovakpatriot/arena/internal/user"
	"github.com/slovakpatriot/arena/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := env.clock.Now().Add(time.Hour)

	testCases := []struct {
		name        string
		input       CreateEventInput
		expectedErr error
	}{
		{"defaults", CreateEventInput{Name: "Cup", StartsAt: start}, nil},
		{"double team", CreateEventInput{Name: "Cup", StartsAt: start, Mode: "team", EliminationType: "double"}, nil},
		{"missing name", CreateEventInput{Name: "  ", StartsAt: start}, ErrInvalidEvent},
		{"missing start", CreateEventInput{Name: "Cup"}, ErrInvalidEvent},
		{"negative fee", CreateEventInput{Name: "Cup", StartsAt: start, EntryFee: -1}, ErrInvalidEvent},
		{"unknown mode", CreateEventInput{Name: "Cup", StartsAt: start, Mode: "duo"}, ErrInvalidEvent},
		{"unknown elimination", CreateEventInput{Name: "Cup", StartsAt: start, EliminationType: "swiss"}, bracket.ErrInvalidEliminationType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := env.eventSvc.CreateEvent(ctx, tc.input)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)

			stored := env.loadEvent(t, event.ID)
			assert.Equal(t, bracket.EventUpcoming, stored.Status)
			assert.False(t, stored.HasBracket())
			if tc.input.Mode == "" {
				assert.Equal(t, bracket.SoloMode, stored.Mode)
				assert.Equal(t, bracket.SingleElimination, stored.EliminationType)
			} else {
				assert.Equal(t, bracket.TeamMode, stored.Mode)
				assert.Equal(t, bracket.DoubleElimination, stored.EliminationType)
			}
		})
	}
}

func TestRegisterWithEntryFee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventInput{EntryFee: 50})

	rich := env.createUser(t, "rich", 100)
	poor := env.createUser(t, "poor", 10)

	reg, err := env.eventSvc.Register(ctx, event.ID, rich.ID)
	require.NoError(t, err)
	assert.True(t, reg.PaidEntry)
	assert.Equal(t, bracket.SoloRegistration, reg.Kind)
	assert.Equal(t, 0, reg.Position)
	assert.Equal(t, int64(50), env.wallet(t, rich.ID))

	_, err = env.eventSvc.Register(ctx, event.ID, rich.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = env.eventSvc.Register(ctx, event.ID, poor.ID)
	assert.ErrorIs(t, err, store.ErrInsufficientFunds)
	assert.Equal(t, int64(10), env.wallet(t, poor.ID))

	details, err := env.eventSvc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, details.Registrations, 1)

	require.NoError(t, env.eventSvc.Unregister(ctx, event.ID, rich.ID))
	assert.Equal(t, int64(100), env.wallet(t, rich.ID))

	err = env.eventSvc.Unregister(ctx, event.ID, rich.ID)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestRegisterWindows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventInput{})

	banned := env.createUser(t, "banned", 0)
	require.NoError(t, env.users.SetStatus(ctx, banned.ID, users.StatusBanned))
	_, err := env.eventSvc.Register(ctx, event.ID, banned.ID)
	assert.ErrorIs(t, err, ErrAccountRestricted)

	early := env.createUser(t, "early", 0)
	_, err = env.eventSvc.Register(ctx, event.ID, early.ID)
	require.NoError(t, err)

	// Registration stays open during the grace period but withdrawal does not.
	env.clock.Advance(time.Hour + 3*time.Minute)
	late := env.createUser(t, "late", 0)
	reg, err := env.eventSvc.Register(ctx, event.ID, late.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Position)

	err = env.eventSvc.Unregister(ctx, event.ID, early.ID)
	assert.ErrorIs(t, err, ErrEventStarted)

	env.clock.Advance(5 * time.Minute)
	_, err = env.eventSvc.Register(ctx, event.ID, env.createUser(t, "later", 0).ID)
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	require.NoError(t, env.eventSvc.UpdateStatus(ctx, event.ID, StatusUpdate{Status: bracket.EventLive}))
	_, err = env.eventSvc.Register(ctx, event.ID, env.createUser(t, "live", 0).ID)
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)

	_, err = env.eventSvc.Register(ctx, uuid.New(), early.ID)
	assert.ErrorIs(t, err, store.ErrEventNotFound)
}

func TestRegisterTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventInput{Mode: "team"})

	captain := env.createUser(t, "captain", 0)
	member := env.createUser(t, "member", 0)
	loner := env.createUser(t, "loner", 0)

	team, err := env.userSvc.CreateTeam(ctx, captain.ID, "Falcons")
	require.NoError(t, err)
	require.NoError(t, env.userSvc.JoinTeam(ctx, member.ID, team.ID.String()))

	_, err = env.userSvc.CreateTeam(ctx, member.ID, "Hawks")
	assert.ErrorIs(t, err, ErrAlreadyInTeam)

	_, err = env.eventSvc.Register(ctx, event.ID, loner.ID)
	assert.ErrorIs(t, err, ErrNotInTeam)

	_, err = env.eventSvc.Register(ctx, event.ID, member.ID)
	assert.ErrorIs(t, err, ErrNotCaptain)

	reg, err := env.eventSvc.Register(ctx, event.ID, captain.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TeamRegistration, reg.Kind)
	assert.Equal(t, team.ID.String(), reg.ParticipantID())
	assert.Equal(t, "Falcons", reg.DisplayName())

	_, err = env.eventSvc.Register(ctx, event.ID, member.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	err = env.eventSvc.Unregister(ctx, event.ID, member.ID)
	assert.ErrorIs(t, err, ErrNotCaptain)
}

func TestDisqualify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventInput{Mode: "team", EntryFee: 20})

	captain := env.createUser(t, "captain", 20)
	member := env.createUser(t, "member", 0)
	team, err := env.userSvc.CreateTeam(ctx, captain.ID, "Falcons")
	require.NoError(t, err)
	require.NoError(t, env.userSvc.JoinTeam(ctx, member.ID, team.ID.String()))
	_, err = env.eventSvc.Register(ctx, event.ID, captain.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, env.eventSvc.Disqualify(ctx, event.ID, env.createUser(t, "outsider", 0).ID), ErrNotRegistered)
	assert.ErrorIs(t, env.eventSvc.Disqualify(ctx, uuid.New(), member.ID), store.ErrEventNotFound)
	assert.ErrorIs(t, env.eventSvc.Disqualify(ctx, event.ID, uuid.New()), store.ErrUserNotFound)

	// Any member takes the whole team entry with them and the fee is kept.
	require.NoError(t, env.eventSvc.Disqualify(ctx, event.ID, member.ID))
	details, err := env.eventSvc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, details.Registrations)
	assert.Equal(t, int64(0), env.wallet(t, captain.ID))
}

func TestCheckIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event, players := env.seedEvent(t, 4, CreateEventInput{CheckInRequired: true})
	outsider := env.createUser(t, "outsider", 0)

	_, err := env.bracketSv.GenerateBracket(ctx, event.ID, false)
	require.NoError(t, err)

	_, err = env.eventSvc.CheckIn(ctx, event.ID, players[0].ID)
	assert.ErrorIs(t, err, ErrCheckInNotOpen)

	env.clock.Advance(50 * time.Minute)

	_, err = env.eventSvc.CheckIn(ctx, event.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrNotRegistered)

	reg, err := env.eventSvc.CheckIn(ctx, event.ID, players[0].ID)
	require.NoError(t, err)
	assert.True(t, reg.CheckedIn)

	stored := env.loadEvent(t, event.ID)
	assert.True(t, stored.Bracket[0][0].Participant1.CheckedIn)
	assert.False(t, stored.Bracket[0][0].Participant2.CheckedIn)

	details, err := env.eventSvc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, details.Registrations[0].CheckedIn)
	assert.False(t, details.Registrations[1].CheckedIn)

	msgs := env.publisher.ofType(realtime.CheckInUpdate)
	require.Len(t, msgs, 1)
	assert.Equal(t, event.ID.String(), msgs[0].EventID)
	assert.JSONEq(t, `{"participantId":"`+idOf(players[0])+`","checkedIn":true}`, string(msgs[0].Payload))

	require.NoError(t, env.eventSvc.UpdateStatus(ctx, event.ID, StatusUpdate{Status: bracket.EventFinished}))
	_, err = env.eventSvc.CheckIn(ctx, event.ID, players[1].ID)
	assert.ErrorIs(t, err, ErrCheckInNotOpen)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventInput{})

	assert.ErrorIs(t, env.eventSvc.UpdateStatus(ctx, event.ID, StatusUpdate{Status: "paused"}), ErrInvalidStatus)
	assert.ErrorIs(t, env.eventSvc.UpdateStatus(ctx, uuid.New(), StatusUpdate{Status: bracket.EventLive}), store.ErrEventNotFound)

	require.NoError(t, env.eventSvc.UpdateStatus(ctx, event.ID, StatusUpdate{Status: bracket.EventFinished}))
	stored := env.loadEvent(t, event.ID)
	assert.Equal(t, bracket.EventFinished, stored.Status)
	require.NotNil(t, stored.FinishedAt)
	assert.True(t, env.clock.Now().Equal(*stored.FinishedAt))
}

func TestUpdateStatusLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventInput{LobbyURL: utils.Ptr("steam://joinlobby/1")})
	require.Nil(t, event.StreamURL)

	require.NoError(t, env.eventSvc.UpdateStatus(ctx, event.ID, StatusUpdate{
		Status:    bracket.EventLive,
		StreamURL: utils.Ptr(" https://twitch.tv/arena "),
	}))
	stored := env.loadEvent(t, event.ID)
	assert.Equal(t, bracket.EventLive, stored.Status)
	require.NotNil(t, stored.StreamURL)
	assert.Equal(t, "https://twitch.tv/arena", *stored.StreamURL)
	require.NotNil(t, stored.LobbyURL, "omitted link is kept")
	assert.Equal(t, "steam://joinlobby/1", *stored.LobbyURL)
	assert.Nil(t, stored.FinishedAt)

	require.NoError(t, env.eventSvc.UpdateStatus(ctx, event.ID, StatusUpdate{
		Status:   bracket.EventLive,
		LobbyURL: utils.Ptr(""),
	}))
	stored = env.loadEvent(t, event.ID)
	assert.Nil(t, stored.LobbyURL, "empty link clears it")
	assert.NotNil(t, stored.StreamURL)
}

func TestDeleteEventRefundsPaidEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventInput{EntryFee: 30})
	player := env.createUser(t, "player", 30)

	_, err := env.eventSvc.Register(ctx, event.ID, player.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), env.wallet(t, player.ID))

	require.NoError(t, env.eventSvc.DeleteEvent(ctx, event.ID))
	assert.Equal(t, int64(30), env.wallet(t, player.ID))

	_, err = env.eventSvc.GetEvent(ctx, event.ID)
	assert.ErrorIs(t, err, store.ErrEventNotFound)
	assert.ErrorIs(t, env.eventSvc.DeleteEvent(ctx, event.ID), store.ErrEventNotFound)
}
