package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
	"github.com/slovakpatriot/arena/internal/config"
	"github.com/slovakpatriot/arena/internal/httputil"
	"github.com/slovakpatriot/arena/internal/store"
	users "github.com/slovakpatriot/arena/internal/user"
)

type ContextKey string

const UserIDKey ContextKey = "userID"

// SessionUserID is the session key holding the logged in user's id.
const SessionUserID = "userID"

type UserLoader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// InitAuth registers the OAuth providers that have credentials configured and
// returns their names.
func InitAuth(cfg *config.Config) []string {
	var providers []goth.Provider
	if cfg.Discord.Enabled() {
		providers = append(providers, discord.New(cfg.Discord.Key, cfg.Discord.Secret, cfg.Discord.CallbackURL, discord.ScopeIdentify, discord.ScopeEmail))
	}
	if cfg.Google.Enabled() {
		providers = append(providers, google.New(cfg.Google.Key, cfg.Google.Secret, cfg.Google.CallbackURL, "email", "profile"))
	}

	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	if len(names) == 0 {
		slog.Warn("no OAuth providers configured, login is disabled")
	}
	return names
}

// LoadAuthenticatedUser puts the session's user into the request context when
// there is one. Requests without a session pass through untouched.
func LoadAuthenticatedUser(sessionManager *scs.SessionManager, loader UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIDStr := sessionManager.GetString(r.Context(), SessionUserID)
			if userIDStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				sessionManager.Remove(r.Context(), SessionUserID)
				next.ServeHTTP(w, r)
				return
			}

			user, err := loader.GetUser(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, store.ErrUserNotFound) {
					httputil.InternalServerError(w, "Failed to load session user", err)
					return
				}
				sessionManager.Remove(r.Context(), SessionUserID)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, users.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthenticatedUser(r.Context()) == nil {
			httputil.Unauthorized(w, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin implies RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthenticatedUser(r.Context())
		if !user.IsAdmin {
			httputil.Forbidden(w, "admin only", nil)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(UserIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	id, ok := val.(uuid.UUID)
	return id, ok
}

func GetAuthenticatedUser(ctx context.Context) *users.User {
	val := ctx.Value(users.UserKey)
	if val == nil {
		return nil
	}
	user, ok := val.(*users.User)
	if !ok {
		return nil
	}
	return user
}
