package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	users "github.com/slovakpatriot/arena/internal/user"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	getUserQuery           = "SELECT * FROM users WHERE id = ?"
	getUserByProviderQuery = `
        SELECT * FROM users
        WHERE provider = ?
        AND provider_id = ?
    `
	createUserQuery = `
		INSERT INTO users (id, email, username, provider, provider_id, avatar_url, is_admin, status, team_id, wallet, created_at) VALUES
		(:id, :email, :username, :provider, :provider_id, :avatar_url, :is_admin, :status, :team_id, :wallet, :created_at)
	`
	updateUserNameAndAvatarQuery = `
		UPDATE users SET
		username = :username,
		avatar_url = :avatar_url
		WHERE id = :id
	`
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUserByProvider(ctx context.Context, provider string, providerID string) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, getUserByProviderQuery, provider, providerID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, provider+"/"+providerID)
	}
	return &user, nil
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return s.getUser(ctx, s.db, id)
}

// GetUserTx reads the user inside tx, so a pending wallet change is visible.
func (s *UserStore) GetUserTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*users.User, error) {
	return s.getUser(ctx, tx, id)
}

func (s *UserStore) getUser(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*users.User, error) {
	var user users.User
	err := sqlx.GetContext(ctx, q, &user, getUserQuery, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, id.String())
	}
	return &user, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = users.StatusActive
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, createUserQuery, user)
	return err
}

func (s *UserStore) UpdateUserNameAndAvatar(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, updateUserNameAndAvatarQuery, user)
	return err
}

// SetAdmin grants or revokes the admin flag of the user with the given email.
func (s *UserStore) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET is_admin = ? WHERE email = ?", isAdmin, email)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrUserNotFound, email))
}

func (s *UserStore) SetStatus(ctx context.Context, id uuid.UUID, status users.Status) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrUserNotFound, id))
}

func (s *UserStore) SetTeam(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, teamID *string) error {
	res, err := tx.ExecContext(ctx, "UPDATE users SET team_id = ? WHERE id = ?", teamID, id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrUserNotFound, id))
}

// Debit takes amount from the user's wallet, failing with ErrInsufficientFunds
// when the balance does not cover it.
func (s *UserStore) Debit(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, amount int64) error {
	if amount <= 0 {
		return nil
	}
	res, err := tx.ExecContext(ctx, "UPDATE users SET wallet = wallet - ? WHERE id = ? AND wallet >= ?", amount, id, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := s.getUser(ctx, tx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: %d required", ErrInsufficientFunds, amount)
}

func (s *UserStore) Credit(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, amount int64) error {
	if amount <= 0 {
		return nil
	}
	res, err := tx.ExecContext(ctx, "UPDATE users SET wallet = wallet + ? WHERE id = ?", amount, id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Errorf("%w: %s", ErrUserNotFound, id))
}

func notFound(err, sentinel error, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", sentinel, key)
	}
	return err
}
