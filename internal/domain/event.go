package domain

import "github.com/google/uuid"

type EventType string

const (
	EventRequestCreated EventType = "request_created"
	EventRequestUpdated EventType = "request_updated"
	EventSessionEnded   EventType = "session_ended"
)

// RequestSummary is the join-request view carried inside fanout events.
// Credentials are deliberately absent: they travel only on the per-request
// status path, where possession of the request id is the capability.
type RequestSummary struct {
	ID          uuid.UUID         `json:"id"`
	DisplayName string            `json:"display_name,omitempty"`
	Status      JoinRequestStatus `json:"status"`
}

// Event is a single state transition broadcast through the fanout hub.
type Event struct {
	Type      EventType       `json:"type"`
	SessionID uuid.UUID       `json:"session_id"`
	Request   *RequestSummary `json:"request,omitempty"`
}

func NewRequestEvent(typ EventType, req *JoinRequest) Event {
	return Event{
		Type:      typ,
		SessionID: req.SessionID,
		Request: &RequestSummary{
			ID:          req.ID,
			DisplayName: req.DisplayName,
			Status:      req.Status,
		},
	}
}

func NewSessionEndedEvent(sessionID uuid.UUID) Event {
	return Event{
		Type:      EventSessionEnded,
		SessionID: sessionID,
	}
}
