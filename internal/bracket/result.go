package bracket

import "fmt"

// Placement records where a participant was seated by a result.
type Placement struct {
	MatchID     string      `json:"matchId"`
	Slot        Slot        `json:"slot"`
	Participant Participant `json:"participant"`
}

type Outcome struct {
	Match Match `json:"match"`
	Side  Side  `json:"side"`
	// Advanced is the winner's seat in the next round of the same side.
	Advanced *Placement `json:"advanced,omitempty"`
	// DroppedTo is the loser's seat in the loser bracket.
	DroppedTo  *Placement   `json:"droppedTo,omitempty"`
	Eliminated *Participant `json:"eliminated,omitempty"`
	// Stranded is a winner or loser that had a target match but no open slot in it.
	Stranded []Participant `json:"stranded,omitempty"`
	// Final is set when the match had no further round to advance into.
	Final bool `json:"final"`
}

// RecordResult decides a match and moves its participants on. Validation
// happens before any write, so a failed call leaves the state untouched.
//
// The winner of match i feeds match i/2 of the next round, slot 1 for even i
// and slot 2 for odd i, whichever sibling reports first. In a double
// elimination event the loser of winner bracket round r takes the first open
// slot of loser bracket round r. Placements never overwrite an occupied slot.
// A match holding a single participant can only be decided when it is a
// winner bracket bye.
func (s *State) RecordResult(matchID, winnerID string) (Outcome, error) {
	side, b, m, index, ok := s.locate(matchID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.Decided() {
		return Outcome{}, fmt.Errorf("%w: %s", ErrAlreadyDecided, matchID)
	}
	if m.awaitingOpponent() && !(side == WinnersSide && m.IsBye()) {
		return Outcome{}, fmt.Errorf("%w: %s", ErrOpponentPending, matchID)
	}
	winner, loser, err := m.split(winnerID)
	if err != nil {
		return Outcome{}, err
	}

	m.Winner = cloneParticipant(winner)
	out := Outcome{Side: side}

	if next := m.Round + 1; next < len(b) {
		target := &b[next][index/2]
		if slot, ok := seatPreferring(target, winner, feederSlot(index)); ok {
			out.Advanced = &Placement{MatchID: target.MatchID, Slot: slot, Participant: *winner}
		} else {
			out.Stranded = append(out.Stranded, *winner)
		}
	} else {
		out.Final = true
	}

	if loser != nil {
		if side == WinnersSide && s.EliminationType == DoubleElimination && m.Round < len(s.LoserBracket) {
			if p, ok := seatFirstOpen(s.LoserBracket[m.Round], loser); ok {
				out.DroppedTo = p
			} else {
				out.Stranded = append(out.Stranded, *loser)
			}
		} else {
			out.Eliminated = cloneParticipant(loser)
		}
	}

	out.Match = m.clone()
	return out, nil
}

func feederSlot(index int) Slot {
	if index%2 == 0 {
		return Slot1
	}
	return Slot2
}

func seatPreferring(m *Match, p *Participant, preferred Slot) (Slot, bool) {
	if *m.slot(preferred) == nil {
		*m.slot(preferred) = cloneParticipant(p)
		return preferred, true
	}
	slot, ok := m.openSlot()
	if !ok {
		return 0, false
	}
	*m.slot(slot) = cloneParticipant(p)
	return slot, true
}

func seatFirstOpen(round Round, p *Participant) (*Placement, bool) {
	for i := range round {
		if slot, ok := round[i].openSlot(); ok {
			*round[i].slot(slot) = cloneParticipant(p)
			return &Placement{MatchID: round[i].MatchID, Slot: slot, Participant: *p}, true
		}
	}
	return nil, false
}
