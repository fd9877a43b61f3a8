package bracket

import "errors"

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrInvalidWinner          = errors.New("winner is not part of this match")
	ErrAlreadyDecided         = errors.New("match already has a winner")
	ErrAlreadyGenerated       = errors.New("bracket already generated")
	ErrBracketNotGenerated    = errors.New("bracket not generated")
	ErrParticipantUnresolved  = errors.New("participant is not registered for this event")
	ErrMalformedRegistration  = errors.New("registration does not reference a participant")
	ErrInvalidEliminationType = errors.New("elimination type must be single or double")
	ErrCheckInPending         = errors.New("match participants have not checked in")
	ErrOpponentPending        = errors.New("match is still waiting for an opponent")
)
