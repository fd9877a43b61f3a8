package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/slovakpatriot/arena/internal/store"
)

// PurgeFinished deletes events that finished more than retention ago and
// returns how many were removed.
func (s *EventService) PurgeFinished(ctx context.Context, retention time.Duration) (int, error) {
	ids, err := s.events.FinishedBefore(ctx, s.clock.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to list finished events: %w", err)
	}

	purged := 0
	for _, id := range ids {
		err := s.DeleteEvent(ctx, id)
		if errors.Is(err, store.ErrEventNotFound) {
			continue
		}
		if err != nil {
			return purged, fmt.Errorf("failed to delete event %s: %w", id, err)
		}
		purged++
	}
	return purged, nil
}

// RunCleanup purges finished events every interval until ctx is done.
func (s *EventService) RunCleanup(ctx context.Context, interval, retention time.Duration) error {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			n, err := s.PurgeFinished(ctx, retention)
			if err != nil {
				slog.Error("event cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("deleted old events", "count", n, "retention", retention)
			}
		}
	}
}
