package service

import (
	"context"
	"testing"
	"time"

	"github.com/slovakpatriot/arena/internal/bracket"
	"github.com/slovakpatriot/arena/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeFinished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	old := env.createEvent(t, CreateEventInput{Name: "Old Cup"})
	require.NoError(t, env.eventSvc.UpdateStatus(ctx, old.ID, StatusUpdate{Status: bracket.EventFinished}))

	env.clock.Advance(20 * time.Hour)
	recent := env.createEvent(t, CreateEventInput{Name: "Recent Cup"})
	require.NoError(t, env.eventSvc.UpdateStatus(ctx, recent.ID, StatusUpdate{Status: bracket.EventFinished}))
	running := env.createEvent(t, CreateEventInput{Name: "Live Cup"})
	require.NoError(t, env.eventSvc.UpdateStatus(ctx, running.ID, StatusUpdate{Status: bracket.EventLive}))

	env.clock.Advance(5 * time.Hour)

	purged, err := env.eventSvc.PurgeFinished(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = env.eventSvc.GetEvent(ctx, old.ID)
	assert.ErrorIs(t, err, store.ErrEventNotFound)
	for _, kept := range []*bracket.Event{recent, running} {
		_, err = env.eventSvc.GetEvent(ctx, kept.ID)
		assert.NoError(t, err, kept.Name)
	}

	purged, err = env.eventSvc.PurgeFinished(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestRunCleanup(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	event := env.createEvent(t, CreateEventInput{})
	require.NoError(t, env.eventSvc.UpdateStatus(ctx, event.ID, StatusUpdate{Status: bracket.EventFinished}))

	done := make(chan error, 1)
	go func() { done <- env.eventSvc.RunCleanup(ctx, time.Hour, 24*time.Hour) }()

	require.NoError(t, env.clock.BlockUntilContext(ctx, 1))
	env.clock.Advance(25 * time.Hour)

	assert.Eventually(t, func() bool {
		_, err := env.eventSvc.GetEvent(context.Background(), event.ID)
		return err != nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
