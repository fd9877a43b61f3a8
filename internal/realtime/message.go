package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type MessageType string

const (
	BracketUpdate  MessageType = "bracket_update"
	CheckInUpdate  MessageType = "checkin_update"
	MatchScheduled MessageType = "match_scheduled"
)

type Message struct {
	Type    MessageType     `json:"type"`
	EventID string          `json:"eventId"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage encodes payload into a message for the event's room.
func NewMessage(t MessageType, eventID uuid.UUID, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Message{Type: t, EventID: eventID.String(), Payload: data}, nil
}

type CheckInPayload struct {
	ParticipantID string `json:"participantId"`
	CheckedIn     bool   `json:"checkedIn"`
}

type MatchScheduledPayload struct {
	MatchID       string `json:"matchId"`
	ScheduledTime string `json:"scheduledTime"`
}

// Publisher delivers messages to the subscribers of an event.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Discard drops every message.
type Discard struct{}

func (Discard) Publish(context.Context, Message) error {
	return nil
}
