package converter

import (
	"time"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/google/uuid"
)

type SessionResponse struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	RoomName  string     `json:"room_name"`
	Status    string     `json:"status"`
	Capacity  int        `json:"capacity"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt time.Time  `json:"started_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

type JoinRequestResponse struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	DisplayName string    `json:"display_name"`
	Status      string    `json:"status"`
	Credential  string    `json:"credential,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func SessionToApi(s *domain.Session) *SessionResponse {
	return &SessionResponse{
		ID:        s.ID,
		OwnerID:   s.OwnerID,
		RoomName:  s.RoomName,
		Status:    string(s.Status),
		Capacity:  s.Capacity,
		CreatedAt: s.CreatedAt,
		StartedAt: s.StartedAt,
		ExpiresAt: s.ExpiresAt,
		EndedAt:   s.EndedAt,
	}
}

func RequestToApi(r *domain.JoinRequest) *JoinRequestResponse {
	return &JoinRequestResponse{
		ID:          r.ID,
		SessionID:   r.SessionID,
		DisplayName: r.DisplayName,
		Status:      string(r.Status),
		Credential:  r.Credential,
		CreatedAt:   r.CreatedAt,
	}
}

func RequestsToApi(requests []*domain.JoinRequest) []*JoinRequestResponse {
	result := make([]*JoinRequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, RequestToApi(r))
	}
	return result
}
