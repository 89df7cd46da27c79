package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const roomNameLength = 12

type SessionStatus string

const (
	SessionStatusLive  SessionStatus = "live"
	SessionStatusEnded SessionStatus = "ended"
)

// Session is one instant live-class occurrence to which students request
// admission. It stays around after it ends for history, so nothing here is
// ever deleted.
type Session struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	RoomName  string
	Status    SessionStatus
	Capacity  int
	CreatedAt time.Time
	StartedAt time.Time
	ExpiresAt time.Time
	EndedAt   *time.Time
}

// NewSession constructs a live session with a generated room name and a fixed
// expiry window.
func NewSession(ownerID uuid.UUID, capacity int, duration time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		RoomName:  generateRoomName(),
		Status:    SessionStatusLive,
		Capacity:  capacity,
		CreatedAt: now,
		StartedAt: now,
		ExpiresAt: now.Add(duration),
	}
}

// Expired reports whether a still-live session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return s.Status == SessionStatusLive && now.After(s.ExpiresAt)
}

func generateRoomName() string {
	name := strings.ReplaceAll(uuid.New().String(), "-", "")
	if len(name) > roomNameLength {
		name = name[:roomNameLength]
	}
	return "class-" + name
}
