package bracket

import (
	"fmt"
	"math"
)

// RoundCount returns max(2, ceil(log2(n))), so even an empty event gets a two
// round skeleton.
func RoundCount(n int) int {
	if n <= 4 {
		return 2
	}
	// Log2 -> Ceil to round up to the next power of two
	return max(2, int(math.Ceil(math.Log2(float64(n)))))
}

// MatchesInRound is the number of matches in round r of a bracket with the given round count.
func MatchesInRound(rounds, r int) int {
	return 1 << (rounds - r - 1)
}

// Generate builds the winner bracket and, for double elimination, an empty
// loser bracket with one round fewer. Round 0 is seeded pairwise in
// participant order; a missing opponent leaves a bye that is never advanced
// automatically.
func Generate(participants []Participant, eliminationType EliminationType) State {
	rounds := RoundCount(len(participants))

	state := State{
		EliminationType: eliminationType,
		Bracket:         buildRounds(WinnersSide, rounds),
	}

	for m := range state.Bracket[0] {
		state.Bracket[0][m].Participant1 = seat(participants, 2*m)
		state.Bracket[0][m].Participant2 = seat(participants, 2*m+1)
	}

	if eliminationType == DoubleElimination {
		state.LoserBracket = buildRounds(LosersSide, rounds-1)
	}

	return state
}

func buildRounds(side Side, rounds int) Bracket {
	b := make(Bracket, rounds)
	for r := 0; r < rounds; r++ {
		count := MatchesInRound(rounds, r)
		b[r] = make(Round, count)
		for m := 0; m < count; m++ {
			b[r][m] = Match{MatchID: MatchID(side, r, m), Round: r}
		}
	}
	return b
}

// MatchID encodes side, round and index, e.g. R1-M0 or LR0-M1.
func MatchID(side Side, round, index int) string {
	if side == LosersSide {
		return fmt.Sprintf("LR%d-M%d", round, index)
	}
	return fmt.Sprintf("R%d-M%d", round, index)
}

func seat(participants []Participant, i int) *Participant {
	if i >= len(participants) {
		return nil
	}
	p := participants[i]
	return &p
}
