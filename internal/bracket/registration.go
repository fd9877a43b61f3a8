package bracket

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationKind string

const (
	SoloRegistration RegistrationKind = "solo"
	TeamRegistration RegistrationKind = "team"
)

// Registration is an event entry made by a user, either for themselves or for
// the team they captain. UserID is the registering user in both cases.
type Registration struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	EventID      uuid.UUID        `db:"event_id" json:"eventId"`
	Kind         RegistrationKind `db:"kind" json:"type"`
	UserID       string           `db:"user_id" json:"userId"`
	Username     string           `db:"username" json:"username"`
	TeamID       *string          `db:"team_id" json:"teamId,omitempty"`
	TeamName     *string          `db:"team_name" json:"teamName,omitempty"`
	CheckedIn    bool             `db:"checked_in" json:"checkedIn"`
	PaidEntry    bool             `db:"paid_entry" json:"paidEntry"`
	Position     int              `db:"position" json:"position"`
	RegisteredAt time.Time        `db:"registered_at" json:"registeredAt"`
}

// ParticipantID is the team id for team entries and the user id otherwise.
func (r *Registration) ParticipantID() string {
	if r.Kind == TeamRegistration {
		if r.TeamID == nil {
			return ""
		}
		return *r.TeamID
	}
	return r.UserID
}

func (r *Registration) DisplayName() string {
	if r.Kind == TeamRegistration && r.TeamName != nil {
		return *r.TeamName
	}
	return r.Username
}

// Covers reports whether the user is the registrant or a member of the registered team.
func (r *Registration) Covers(userID string, teamID *string) bool {
	if r.Kind == SoloRegistration && r.UserID == userID {
		return true
	}
	return r.Kind == TeamRegistration && r.TeamID != nil && teamID != nil && *r.TeamID == *teamID
}
