package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
	"github.com/slovakpatriot/arena/internal/bracket"
	"github.com/slovakpatriot/arena/internal/httputil"
	"github.com/slovakpatriot/arena/internal/middleware"
	"github.com/slovakpatriot/arena/internal/service"
	users "github.com/slovakpatriot/arena/internal/user"
	"github.com/slovakpatriot/arena/views"
)

func (app *application) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.NewSessionView(r.Context(), app.providers))
}

func (app *application) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessions.Destroy(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to destroy session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleAuthBegin(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
	gothic.BeginAuthHandler(w, r)
}

func (app *application) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		httputil.BadRequest(w, "Authentication failure", err)
		return
	}

	user, err := app.userService.FindOrCreateUserByProvider(r.Context(), gothUser)
	if err != nil {
		httputil.InternalServerError(w, "Failed to find or create user", err)
		return
	}

	if err := app.sessions.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session", err)
		return
	}
	app.sessions.Put(r.Context(), middleware.SessionUserID, user.ID.String())

	slog.Info("user logged in", "user_id", user.ID, "provider", gothUser.Provider)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (app *application) handleEventSocket(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if _, err := app.eventService.GetEvent(r.Context(), id); err != nil {
		respondError(w, "Failed to get event", err)
		return
	}
	app.hub.ServeWS(w, r, id.String())
}

func (app *application) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := app.eventService.ListEvents(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to list events", err)
		return
	}
	if events == nil {
		events = []bracket.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (app *application) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	details, err := app.eventService.GetEvent(r.Context(), id)
	if err != nil {
		respondError(w, "Failed to get event", err)
		return
	}
	writeJSON(w, http.StatusOK, views.NewEventPage(r, details))
}

func (app *application) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var input service.CreateEventInput
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.BadRequest(w, err.Error(), nil)
		return
	}
	event, err := app.eventService.CreateEvent(r.Context(), input)
	if err != nil {
		respondError(w, "Failed to create event", err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (app *application) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var input service.StatusUpdate
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.BadRequest(w, err.Error(), nil)
		return
	}
	if err := app.eventService.UpdateStatus(r.Context(), id, input); err != nil {
		respondError(w, "Failed to update event status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if err := app.eventService.DeleteEvent(r.Context(), id); err != nil {
		respondError(w, "Failed to delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleRegister(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	user := middleware.GetAuthenticatedUser(r.Context())
	reg, err := app.eventService.Register(r.Context(), id, user.ID)
	if err != nil {
		respondError(w, "Failed to register", err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

func (app *application) handleUnregister(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	user := middleware.GetAuthenticatedUser(r.Context())
	if err := app.eventService.Unregister(r.Context(), id, user.ID); err != nil {
		respondError(w, "Failed to unregister", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	user := middleware.GetAuthenticatedUser(r.Context())
	reg, err := app.eventService.CheckIn(r.Context(), id, user.ID)
	if err != nil {
		respondError(w, "Failed to check in", err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (app *application) handleGenerateBracket(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		var err error
		if force, err = strconv.ParseBool(v); err != nil {
			httputil.BadRequest(w, "force must be true or false", err)
			return
		}
	}
	state, err := app.bracketService.GenerateBracket(r.Context(), id, force)
	if err != nil {
		respondError(w, "Failed to generate bracket", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (app *application) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var input struct {
		WinnerID string `json:"winnerId"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.BadRequest(w, err.Error(), nil)
		return
	}
	if input.WinnerID == "" {
		httputil.BadRequest(w, "winnerId is required", nil)
		return
	}
	outcome, err := app.bracketService.RecordResult(r.Context(), id, chi.URLParam(r, "matchId"), input.WinnerID)
	if err != nil {
		respondError(w, "Failed to record result", err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (app *application) handleScheduleMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var input struct {
		ScheduledTime string `json:"scheduledTime"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.BadRequest(w, err.Error(), nil)
		return
	}
	if err := app.bracketService.ScheduleMatch(r.Context(), id, chi.URLParam(r, "matchId"), input.ScheduledTime); err != nil {
		respondError(w, "Failed to schedule match", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleOverrideParticipants leaves a slot untouched when its key is missing
// or null and clears it when the id is "".
func (app *application) handleOverrideParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var input struct {
		Participant1ID *string `json:"participant1Id"`
		Participant2ID *string `json:"participant2Id"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.BadRequest(w, err.Error(), nil)
		return
	}
	match, err := app.bracketService.OverrideParticipants(r.Context(), id, chi.URLParam(r, "matchId"), input.Participant1ID, input.Participant2ID)
	if err != nil {
		respondError(w, "Failed to override participants", err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (app *application) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.BadRequest(w, err.Error(), nil)
		return
	}
	user := middleware.GetAuthenticatedUser(r.Context())
	team, err := app.userService.CreateTeam(r.Context(), user.ID, input.Name)
	if err != nil {
		respondError(w, "Failed to create team", err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (app *application) handleJoinTeam(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())
	if err := app.userService.JoinTeam(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		respondError(w, "Failed to join team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleLeaveTeam(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())
	if err := app.userService.LeaveTeam(r.Context(), user.ID); err != nil {
		respondError(w, "Failed to leave team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleKickMember(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MemberID string `json:"memberId"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.BadRequest(w, err.Error(), nil)
		return
	}
	memberID, ok := bodyUUID(w, "memberId", input.MemberID)
	if !ok {
		return
	}
	user := middleware.GetAuthenticatedUser(r.Context())
	if err := app.userService.KickMember(r.Context(), user.ID, chi.URLParam(r, "id"), memberID); err != nil {
		respondError(w, "Failed to kick member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleTransferCaptain(w http.ResponseWriter, r *http.Request) {
	var input struct {
		NewCaptainID string `json:"newCaptainId"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.BadRequest(w, err.Error(), nil)
		return
	}
	newCaptainID, ok := bodyUUID(w, "newCaptainId", input.NewCaptainID)
	if !ok {
		return
	}
	user := middleware.GetAuthenticatedUser(r.Context())
	if err := app.userService.TransferCaptain(r.Context(), user.ID, chi.URLParam(r, "id"), newCaptainID); err != nil {
		respondError(w, "Failed to transfer captaincy", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleDisbandTeam(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())
	if err := app.userService.DisbandTeam(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		respondError(w, "Failed to disband team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleSetUserStatus(status users.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "user")
		if !ok {
			return
		}
		if err := app.userService.SetStatus(r.Context(), id, status); err != nil {
			respondError(w, "Failed to set user status", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (app *application) handleDisqualify(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "user")
	if !ok {
		return
	}
	var input struct {
		EventID string `json:"eventId"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		httputil.BadRequest(w, err.Error(), nil)
		return
	}
	eventID, ok := bodyUUID(w, "eventId", input.EventID)
	if !ok {
		return
	}
	if err := app.eventService.Disqualify(r.Context(), eventID, id); err != nil {
		respondError(w, "Failed to disqualify", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func eventID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return pathUUID(w, r, "event")
}

func pathUUID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+what+" ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func bodyUUID(w http.ResponseWriter, field, value string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		httputil.BadRequest(w, field+" must be a valid ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
