package bracket

import "fmt"

// ParticipantLookup resolves a participant id to its current identity.
type ParticipantLookup interface {
	Lookup(id string) (Participant, bool)
}

// Registry is an event's registrations in registration order.
type Registry []Registration

func (r Registry) Lookup(id string) (Participant, bool) {
	if id == "" {
		return Participant{}, false
	}
	for i := range r {
		if r[i].ParticipantID() == id {
			return participantOf(&r[i]), true
		}
	}
	return Participant{}, false
}

// ResolveParticipants maps registrations to participants, preserving order.
// The order is the seeding order of round 0.
func ResolveParticipants(regs []Registration) ([]Participant, error) {
	participants := make([]Participant, 0, len(regs))
	for i := range regs {
		if regs[i].ParticipantID() == "" {
			return nil, fmt.Errorf("%w: registration %s", ErrMalformedRegistration, regs[i].ID)
		}
		participants = append(participants, participantOf(&regs[i]))
	}
	return participants, nil
}

func participantOf(r *Registration) Participant {
	return Participant{
		ID:        r.ParticipantID(),
		Name:      r.DisplayName(),
		CheckedIn: r.CheckedIn,
	}
}
