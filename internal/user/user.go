package users

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusBanned    Status = "banned"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusBanned:
		return true
	}
	return false
}

type User struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	Username   string    `db:"username" json:"username"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	Provider   *string   `db:"provider" json:"provider,omitempty"`
	ProviderID *string   `db:"provider_id" json:"-"`
	AvatarURL  *string   `db:"avatar_url" json:"avatarUrl,omitempty"`
	IsAdmin    bool      `db:"is_admin" json:"isAdmin"`
	Status     Status    `db:"status" json:"status"`
	TeamID     *string   `db:"team_id" json:"teamId,omitempty"`
	Wallet     int64     `db:"wallet" json:"wallet"`
}

// Restricted reports whether the account may not take part in events.
func (u *User) Restricted() bool {
	return u.Status == StatusBanned || u.Status == StatusSuspended
}

type Team struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CaptainID string    `db:"captain_id" json:"captainId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (t *Team) IsCaptain(u *User) bool {
	return u != nil && t.CaptainID == u.ID.String()
}
