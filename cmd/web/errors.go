package main

import (
	"errors"
	"net/http"

	"github.com/slovakpatriot/arena/internal/bracket"
	"github.com/slovakpatriot/arena/internal/httputil"
	"github.com/slovakpatriot/arena/internal/service"
	"github.com/slovakpatriot/arena/internal/store"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, bracket.ErrMatchNotFound),
		errors.Is(err, bracket.ErrBracketNotGenerated),
		errors.Is(err, store.ErrEventNotFound),
		errors.Is(err, store.ErrRegistrationNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrTeamNotFound),
		errors.Is(err, service.ErrNotRegistered):
		return http.StatusNotFound

	case errors.Is(err, bracket.ErrInvalidWinner),
		errors.Is(err, bracket.ErrParticipantUnresolved),
		errors.Is(err, bracket.ErrInvalidEliminationType),
		errors.Is(err, bracket.ErrMalformedRegistration),
		errors.Is(err, bracket.ErrCheckInPending),
		errors.Is(err, service.ErrInvalidEvent),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrCheckInNotOpen),
		errors.Is(err, service.ErrRegistrationClosed),
		errors.Is(err, service.ErrRegistrationNotOpen),
		errors.Is(err, service.ErrEventStarted),
		errors.Is(err, service.ErrNotInTeam),
		errors.Is(err, service.ErrAlreadyInTeam),
		errors.Is(err, service.ErrTeamNameRequired),
		errors.Is(err, service.ErrNotTeamMember),
		errors.Is(err, service.ErrCaptainCannotLeave),
		errors.Is(err, service.ErrTeamRegistered),
		errors.Is(err, service.ErrInvalidUserStatus),
		errors.Is(err, store.ErrInsufficientFunds):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrNotCaptain),
		errors.Is(err, service.ErrAccountRestricted):
		return http.StatusForbidden

	case errors.Is(err, bracket.ErrAlreadyGenerated),
		errors.Is(err, bracket.ErrAlreadyDecided),
		errors.Is(err, bracket.ErrOpponentPending),
		errors.Is(err, service.ErrAlreadyRegistered):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err with the status it maps to. msg is only logged, and
// only for unexpected errors.
func respondError(w http.ResponseWriter, msg string, err error) {
	switch statusFor(err) {
	case http.StatusNotFound:
		httputil.NotFound(w, err.Error(), nil)
	case http.StatusBadRequest:
		httputil.BadRequest(w, err.Error(), nil)
	case http.StatusForbidden:
		httputil.Forbidden(w, err.Error(), nil)
	case http.StatusConflict:
		httputil.Conflict(w, err.Error(), nil)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}
