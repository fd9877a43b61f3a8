package bracket

import "fmt"

// State is the bracket subtree owned by this package: the winner bracket and,
// for double elimination, the loser bracket. Its JSON form is the persisted shape.
type State struct {
	EliminationType EliminationType `json:"eliminationType"`
	Bracket         Bracket         `json:"bracket"`
	LoserBracket    Bracket         `json:"loserBracket"`
}

func (s State) Generated() bool {
	return s.Bracket != nil
}

func (s State) Clone() State {
	return State{
		EliminationType: s.EliminationType,
		Bracket:         s.Bracket.Clone(),
		LoserBracket:    s.LoserBracket.Clone(),
	}
}

// Find returns a copy of the match with the given id, searching the winner
// bracket before the loser bracket.
func (s State) Find(matchID string) (Match, Side, bool) {
	side, _, m, _, ok := s.locate(matchID)
	if !ok {
		return Match{}, "", false
	}
	return m.clone(), side, true
}

func (s State) locate(matchID string) (Side, Bracket, *Match, int, bool) {
	if m, i, ok := s.Bracket.find(matchID); ok {
		return WinnersSide, s.Bracket, m, i, true
	}
	if m, i, ok := s.LoserBracket.find(matchID); ok {
		return LosersSide, s.LoserBracket, m, i, true
	}
	return "", nil, nil, 0, false
}

// Champion is the winner of the winner bracket final, if decided.
func (s State) Champion() *Participant {
	if len(s.Bracket) == 0 {
		return nil
	}
	final := s.Bracket[len(s.Bracket)-1]
	if len(final) == 0 {
		return nil
	}
	return cloneParticipant(final[0].Winner)
}

// ScheduleMatch stores the scheduled time verbatim.
func (s *State) ScheduleMatch(matchID, scheduledTime string) error {
	_, _, m, _, ok := s.locate(matchID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	m.ScheduledTime = &scheduledTime
	return nil
}

// OverrideParticipants replaces the slots of a winner bracket match. A nil id
// leaves the slot untouched and an empty id clears it. Winners and later rounds
// are not revisited.
func (s *State) OverrideParticipants(matchID string, participant1ID, participant2ID *string, lookup ParticipantLookup) (Match, error) {
	m, _, ok := s.Bracket.find(matchID)
	if !ok {
		return Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}

	p1, err := resolveOverride(participant1ID, lookup)
	if err != nil {
		return Match{}, err
	}
	p2, err := resolveOverride(participant2ID, lookup)
	if err != nil {
		return Match{}, err
	}

	if participant1ID != nil {
		m.Participant1 = p1
	}
	if participant2ID != nil {
		m.Participant2 = p2
	}

	return m.clone(), nil
}

func resolveOverride(id *string, lookup ParticipantLookup) (*Participant, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	p, ok := lookup.Lookup(*id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrParticipantUnresolved, *id)
	}
	return &p, nil
}

// SetCheckIn refreshes the check-in flag of every slot holding the participant
// and returns how many slots changed.
func (s *State) SetCheckIn(participantID string, checkedIn bool) int {
	changed := 0
	for _, b := range []Bracket{s.Bracket, s.LoserBracket} {
		for r := range b {
			for i := range b[r] {
				m := &b[r][i]
				for _, p := range []*Participant{m.Participant1, m.Participant2, m.Winner} {
					if p != nil && p.ID == participantID && p.CheckedIn != checkedIn {
						p.CheckedIn = checkedIn
						changed++
					}
				}
			}
		}
	}
	return changed
}
