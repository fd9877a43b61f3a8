package service

import "errors"

var (
	ErrInvalidEvent        = errors.New("invalid event")
	ErrInvalidStatus       = errors.New("status must be upcoming, live or finished")
	ErrRegistrationNotOpen = errors.New("registration is not open for this event")
	ErrRegistrationClosed  = errors.New("registration has closed")
	ErrAlreadyRegistered   = errors.New("already registered for this event")
	ErrNotRegistered       = errors.New("not registered for this event")
	ErrEventStarted        = errors.New("event has already started")
	ErrCheckInNotOpen      = errors.New("check-in is not open")
	ErrAccountRestricted   = errors.New("account is suspended or banned")
	ErrNotInTeam           = errors.New("user is not in a team")
	ErrAlreadyInTeam       = errors.New("user is already in a team")
	ErrNotCaptain          = errors.New("only the team captain can do this")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrNotTeamMember       = errors.New("user is not a member of this team")
	ErrCaptainCannotLeave  = errors.New("captain cannot leave; transfer captaincy or disband the team")
	ErrTeamRegistered      = errors.New("team is registered for an event")
	ErrInvalidUserStatus   = errors.New("status must be active, suspended or banned")
)
