package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Side string

const (
	WinnersSide Side = "winners"
	LosersSide  Side = "losers"
)

// Slot is one of the two participant positions of a match.
type Slot int

const (
	Slot1 Slot = 1
	Slot2 Slot = 2
)

type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CheckedIn bool   `json:"checkedIn"`
}

type Match struct {
	MatchID       string       `json:"matchId"`
	Round         int          `json:"round"`
	Participant1  *Participant `json:"participant1"`
	Participant2  *Participant `json:"participant2"`
	Winner        *Participant `json:"winner"`
	ScheduledTime *string      `json:"scheduledTime"`
}

func (m *Match) Decided() bool {
	return m.Winner != nil
}

// IsBye reports a round 0 match with exactly one seeded participant.
func (m *Match) IsBye() bool {
	return m.Round == 0 && (m.Participant1 == nil) != (m.Participant2 == nil)
}

func (m *Match) awaitingOpponent() bool {
	return (m.Participant1 == nil) != (m.Participant2 == nil)
}

func (m *Match) Has(participantID string) bool {
	return (m.Participant1 != nil && m.Participant1.ID == participantID) ||
		(m.Participant2 != nil && m.Participant2.ID == participantID)
}

func (m *Match) slot(s Slot) **Participant {
	if s == Slot1 {
		return &m.Participant1
	}
	return &m.Participant2
}

func (m *Match) openSlot() (Slot, bool) {
	if m.Participant1 == nil {
		return Slot1, true
	}
	if m.Participant2 == nil {
		return Slot2, true
	}
	return 0, false
}

// split returns the participant with winnerID and the opponent (nil on a bye).
func (m *Match) split(winnerID string) (winner, loser *Participant, err error) {
	switch {
	case winnerID == "":
	case m.Participant1 != nil && m.Participant1.ID == winnerID:
		return m.Participant1, m.Participant2, nil
	case m.Participant2 != nil && m.Participant2.ID == winnerID:
		return m.Participant2, m.Participant1, nil
	}
	return nil, nil, fmt.Errorf("%w: %q is not in match %s", ErrInvalidWinner, winnerID, m.MatchID)
}

func (m *Match) clone() Match {
	return Match{
		MatchID:       m.MatchID,
		Round:         m.Round,
		Participant1:  cloneParticipant(m.Participant1),
		Participant2:  cloneParticipant(m.Participant2),
		Winner:        cloneParticipant(m.Winner),
		ScheduledTime: cloneString(m.ScheduledTime),
	}
}

type Round []Match

// Bracket is an ordered sequence of rounds. A nil Bracket is stored as SQL NULL.
type Bracket []Round

func (b Bracket) find(matchID string) (*Match, int, bool) {
	for r := range b {
		for i := range b[r] {
			if b[r][i].MatchID == matchID {
				return &b[r][i], i, true
			}
		}
	}
	return nil, 0, false
}

func (b Bracket) MatchCount() int {
	n := 0
	for _, round := range b {
		n += len(round)
	}
	return n
}

func (b Bracket) Clone() Bracket {
	if b == nil {
		return nil
	}
	out := make(Bracket, len(b))
	for r, round := range b {
		out[r] = make(Round, len(round))
		for i := range round {
			out[r][i] = round[i].clone()
		}
	}
	return out
}

func (b Bracket) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *Bracket) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*b = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("bracket: cannot scan %T", src)
	}
	if len(data) == 0 || string(data) == "null" {
		*b = nil
		return nil
	}
	return json.Unmarshal(data, b)
}

func cloneParticipant(p *Participant) *Participant {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
