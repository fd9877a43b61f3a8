package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	users "github.com/slovakpatriot/arena/internal/user"
)

type TeamStore struct {
	db *sqlx.DB
}

func NewTeamStore(db *sqlx.DB) *TeamStore {
	return &TeamStore{db: db}
}

func (s *TeamStore) CreateTeam(ctx context.Context, tx *sqlx.Tx, team *users.Team) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO teams (id, name, captain_id, created_at)
		VALUES (:id, :name, :captain_id, :created_at)`, team)
	return err
}

func (s *TeamStore) GetTeam(ctx context.Context, q sqlx.QueryerContext, id string) (*users.Team, error) {
	var team users.Team
	err := sqlx.GetContext(ctx, q, &team, "SELECT * FROM teams WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, ErrTeamNotFound, id)
	}
	return &team, nil
}

func (s *TeamStore) SetCaptain(ctx context.Context, tx *sqlx.Tx, id, captainID string) error {
	res, err := tx.ExecContext(ctx, "UPDATE teams SET captain_id = ? WHERE id = ?", captainID, id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrTeamNotFound, id))
}

// DeleteTeam removes the team and releases its members.
func (s *TeamStore) DeleteTeam(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, "UPDATE users SET team_id = NULL WHERE team_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrTeamNotFound, id))
}

// Registered reports whether the team holds a registration for an event that
// has not finished.
func (s *TeamStore) Registered(ctx context.Context, q sqlx.QueryerContext, id string) (bool, error) {
	var registered bool
	err := sqlx.GetContext(ctx, q, &registered, `
		SELECT EXISTS (
			SELECT 1 FROM registrations r
			JOIN events e ON e.id = r.event_id
			WHERE r.team_id = ? AND e.status != 'finished'
		)`, id)
	return registered, err
}
