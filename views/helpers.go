package views

import (
	"context"
	"net"
	"net/http"

	"github.com/slovakpatriot/arena/internal/bracket"
	"github.com/slovakpatriot/arena/internal/middleware"
	"github.com/slovakpatriot/arena/internal/service"
	users "github.com/slovakpatriot/arena/internal/user"
	"github.com/slovakpatriot/arena/internal/video"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

// ViewerParticipantID is the bracket participant id the user plays under in
// the event: their team in team events, themselves otherwise.
func ViewerParticipantID(event *bracket.Event, user *users.User) string {
	if user == nil {
		return ""
	}
	if event.Mode == bracket.TeamMode {
		if user.TeamID == nil {
			return ""
		}
		return *user.TeamID
	}
	return user.ID.String()
}

type EventPage struct {
	*service.EventDetails
	View   BracketView     `json:"view"`
	Stream video.EmbedInfo `json:"stream"`
}

func NewEventPage(r *http.Request, details *service.EventDetails) EventPage {
	event := details.Event
	viewer := ViewerParticipantID(event, GetUser(r.Context()))
	return EventPage{
		EventDetails: details,
		View:         PrepareBracketView(event.State(), event.CheckInRequired, viewer),
		Stream:       video.GetEmbedInfo(event.StreamURL, hostname(r)),
	}
}

type SessionView struct {
	LoggedIn  bool        `json:"loggedIn"`
	User      *users.User `json:"user,omitempty"`
	Providers []string    `json:"providers"`
}

func NewSessionView(ctx context.Context, providers []string) SessionView {
	user := GetUser(ctx)
	return SessionView{LoggedIn: user != nil, User: user, Providers: providers}
}

func hostname(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
