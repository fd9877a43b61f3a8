package bracket

// CheckInGate decides whether a placed participant is active. When check-in is
// not required every placed participant is active.
type CheckInGate struct {
	Required bool
}

func (g CheckInGate) Admits(p *Participant) bool {
	if p == nil {
		return false
	}
	return !g.Required || p.CheckedIn
}

// Ready reports whether every participant present in the match is active.
// An empty match is never ready.
func (g CheckInGate) Ready(m Match) bool {
	present := 0
	for _, p := range []*Participant{m.Participant1, m.Participant2} {
		if p == nil {
			continue
		}
		if !g.Admits(p) {
			return false
		}
		present++
	}
	return present > 0
}

// Pending lists the participants seated in undecided matches that are not yet
// active, each once, in bracket order.
func (g CheckInGate) Pending(s State) []Participant {
	var pending []Participant
	seen := make(map[string]bool)
	for _, b := range []Bracket{s.Bracket, s.LoserBracket} {
		for _, round := range b {
			for _, m := range round {
				if m.Decided() {
					continue
				}
				for _, p := range []*Participant{m.Participant1, m.Participant2} {
					if p == nil || g.Admits(p) || seen[p.ID] {
						continue
					}
					seen[p.ID] = true
					pending = append(pending, *p)
				}
			}
		}
	}
	return pending
}
