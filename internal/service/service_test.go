package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/slovakpatriot/arena/internal/bracket"
	"github.com/slovakpatriot/arena/internal/db"
	"github.com/slovakpatriot/arena/internal/realtime"
	"github.com/slovakpatriot/arena/internal/store"
	users "github.com/slovakpatriot/arena/internal/user"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []realtime.Message
}

func (p *recordingPublisher) Publish(_ context.Context, msg realtime.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) ofType(t realtime.MessageType) []realtime.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []realtime.Message
	for _, m := range p.messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

type testEnv struct {
	db        *sqlx.DB
	clock     *clockwork.FakeClock
	publisher *recordingPublisher
	events    *store.EventStore
	users     *store.UserStore
	teams     *store.TeamStore
	eventSvc  *EventService
	bracketSv *BracketService
	userSvc   *UserService
}

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.InitDB(":memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"), "Failed to apply migrations")
	return database
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := setupTestDB(t)
	env := &testEnv{
		db:        database,
		clock:     clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
		publisher: &recordingPublisher{},
		events:    store.NewEventStore(database),
		users:     store.NewUserStore(database),
		teams:     store.NewTeamStore(database),
	}
	locks := NewEventLocks()
	env.eventSvc = NewEventService(database, env.events, env.users, env.teams, env.users, env.publisher, locks, env.clock,
		Windows{CheckIn: 10 * time.Minute, RegistrationGrace: 5 * time.Minute})
	env.bracketSv = NewBracketService(database, env.events, env.publisher, locks)
	env.userSvc = NewUserService(database, env.users, env.teams, env.clock)
	return env
}

func (env *testEnv) createUser(t *testing.T, name string, wallet int64) *users.User {
	t.Helper()
	user := &users.User{
		ID:        uuid.New(),
		Email:     name + "@example.com",
		Username:  name,
		Wallet:    wallet,
		Status:    users.StatusActive,
		CreatedAt: env.clock.Now(),
	}
	require.NoError(t, env.users.CreateUser(context.Background(), user))
	return user
}

func (env *testEnv) createEvent(t *testing.T, input CreateEventInput) *bracket.Event {
	t.Helper()
	if input.Name == "" {
		input.Name = "Friday Cup"
	}
	if input.StartsAt.IsZero() {
		input.StartsAt = env.clock.Now().Add(time.Hour)
	}
	event, err := env.eventSvc.CreateEvent(context.Background(), input)
	require.NoError(t, err)
	return event
}

// seedEvent creates an event with n registered solo players named P1..Pn and
// returns it together with the players in registration order.
func (env *testEnv) seedEvent(t *testing.T, n int, input CreateEventInput) (*bracket.Event, []*users.User) {
	t.Helper()
	event := env.createEvent(t, input)
	players := make([]*users.User, n)
	for i := range players {
		players[i] = env.createUser(t, fmt.Sprintf("P%d", i+1), 0)
		_, err := env.eventSvc.Register(context.Background(), event.ID, players[i].ID)
		require.NoError(t, err)
	}
	return event, players
}

func (env *testEnv) wallet(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	user, err := env.users.GetUser(context.Background(), id)
	require.NoError(t, err)
	return user.Wallet
}

func (env *testEnv) loadEvent(t *testing.T, id uuid.UUID) *bracket.Event {
	t.Helper()
	event, err := env.events.GetEvent(context.Background(), env.db, id)
	require.NoError(t, err)
	return event
}

func idOf(u *users.User) string {
	return u.ID.String()
}
