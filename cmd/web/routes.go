package main

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/slovakpatriot/arena/internal/config"
	"github.com/slovakpatriot/arena/internal/middleware"
	"github.com/slovakpatriot/arena/internal/realtime"
	"github.com/slovakpatriot/arena/internal/service"
	"github.com/slovakpatriot/arena/internal/store"
	users "github.com/slovakpatriot/arena/internal/user"
)

type application struct {
	sessions       *scs.SessionManager
	users          *store.UserStore
	eventService   *service.EventService
	bracketService *service.BracketService
	userService    *service.UserService
	hub            *realtime.Hub
	providers      []string
	allowedOrigins []string
}

func newApplication(
	database *sqlx.DB,
	cfg *config.Config,
	sessionManager *scs.SessionManager,
	hub *realtime.Hub,
	publisher realtime.Publisher,
	clock clockwork.Clock,
	providers []string,
) *application {
	events := store.NewEventStore(database)
	userStore := store.NewUserStore(database)
	teams := store.NewTeamStore(database)
	locks := service.NewEventLocks()

	windows := service.Windows{CheckIn: cfg.CheckInWindow, RegistrationGrace: cfg.RegistrationGrace}

	return &application{
		sessions:       sessionManager,
		users:          userStore,
		eventService:   service.NewEventService(database, events, userStore, teams, userStore, publisher, locks, clock, windows),
		bracketService: service.NewBracketService(database, events, publisher, locks),
		userService:    service.NewUserService(database, userStore, teams, clock),
		hub:            hub,
		providers:      providers,
		allowedOrigins: cfg.CORSAllowedOrigins,
	}
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// The websocket upgrade needs the raw connection, so it stays outside the
	// session middleware.
	r.Get("/ws/events/{id}", app.handleEventSocket)

	r.Group(func(r chi.Router) {
		r.Use(app.sessions.LoadAndSave)
		r.Use(middleware.LoadAuthenticatedUser(app.sessions, app.users))
		app.sessionRoutes(r)
	})

	return r
}

func (app *application) sessionRoutes(r chi.Router) {
	r.Get("/session", app.handleSession)
	r.Post("/logout", app.handleLogout)
	r.Get("/auth/{provider}", app.handleAuthBegin)
	r.Get("/auth/{provider}/callback", app.handleAuthCallback)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", app.handleListEvents)
		r.Get("/{id}", app.handleGetEvent)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/{id}/register", app.handleRegister)
			r.Post("/{id}/unregister", app.handleUnregister)
			r.Post("/{id}/checkin", app.handleCheckIn)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/", app.handleCreateEvent)
			r.Put("/{id}/status", app.handleUpdateStatus)
			r.Delete("/{id}", app.handleDeleteEvent)
			r.Post("/{id}/bracket/generate", app.handleGenerateBracket)
			r.Post("/{id}/matches/{matchId}/result", app.handleRecordResult)
			r.Post("/{id}/matches/{matchId}/schedule", app.handleScheduleMatch)
			r.Post("/{id}/matches/{matchId}/update", app.handleOverrideParticipants)
		})
	})

	r.Route("/teams", func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/", app.handleCreateTeam)
		r.Post("/leave", app.handleLeaveTeam)
		r.Post("/{id}/join", app.handleJoinTeam)
		r.Post("/{id}/kick", app.handleKickMember)
		r.Post("/{id}/transfer", app.handleTransferCaptain)
		r.Post("/{id}/disband", app.handleDisbandTeam)
	})

	r.Route("/admin/users/{id}", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Post("/ban", app.handleSetUserStatus(users.StatusBanned))
		r.Post("/suspend", app.handleSetUserStatus(users.StatusSuspended))
		r.Post("/activate", app.handleSetUserStatus(users.StatusActive))
		r.Post("/disqualify", app.handleDisqualify)
	})
}
