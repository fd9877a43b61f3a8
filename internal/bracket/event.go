package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventLive     EventStatus = "live"
	EventFinished EventStatus = "finished"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventUpcoming, EventLive, EventFinished:
		return true
	}
	return false
}

type EliminationType string

const (
	SingleElimination EliminationType = "single"
	DoubleElimination EliminationType = "double"
)

// ParseEliminationType defaults an empty value to single elimination.
func ParseEliminationType(s string) (EliminationType, error) {
	switch EliminationType(s) {
	case "", SingleElimination:
		return SingleElimination, nil
	case DoubleElimination:
		return DoubleElimination, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEliminationType, s)
}

type Mode string

const (
	SoloMode Mode = "solo"
	TeamMode Mode = "team"
)

type Event struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Description     string          `db:"description" json:"description"`
	Mode            Mode            `db:"mode" json:"mode"`
	EliminationType EliminationType `db:"elimination_type" json:"eliminationType"`
	Status          EventStatus     `db:"status" json:"status"`
	StartsAt        time.Time       `db:"starts_at" json:"startsAt"`
	EntryFee        int64           `db:"entry_fee" json:"entryFee"`
	CheckInRequired bool            `db:"check_in_required" json:"checkInRequired"`
	StreamURL       *string         `db:"stream_url" json:"streamUrl"`
	LobbyURL        *string         `db:"lobby_url" json:"lobbyUrl"`
	WinnerID        *string         `db:"winner_id" json:"winnerId"`
	WinnerName      *string         `db:"winner_name" json:"winnerName"`
	Bracket         Bracket         `db:"bracket" json:"bracket"`
	LoserBracket    Bracket         `db:"loser_bracket" json:"loserBracket"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	FinishedAt      *time.Time      `db:"finished_at" json:"finishedAt"`
}

func (e *Event) HasBracket() bool {
	return e.Bracket != nil
}

// State is the bracket subtree of the event in its persisted shape.
func (e *Event) State() State {
	return State{
		EliminationType: e.EliminationType,
		Bracket:         e.Bracket,
		LoserBracket:    e.LoserBracket,
	}
}

func (e *Event) SetState(s State) {
	e.Bracket = s.Bracket
	e.LoserBracket = s.LoserBracket
}
