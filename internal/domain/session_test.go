package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewSession(t *testing.T) {
	owner := uuid.New()
	session := NewSession(owner, 5, 2*time.Hour)

	if session.Status != SessionStatusLive {
		t.Fatalf("expected live, got %s", session.Status)
	}
	if session.OwnerID != owner {
		t.Fatal("owner mismatch")
	}
	if session.Capacity != 5 {
		t.Fatalf("expected capacity 5, got %d", session.Capacity)
	}
	if !strings.HasPrefix(session.RoomName, "class-") {
		t.Fatalf("unexpected room name %q", session.RoomName)
	}
	want := session.StartedAt.Add(2 * time.Hour)
	if !session.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, session.ExpiresAt)
	}
	if session.EndedAt != nil {
		t.Fatal("fresh session should not have ended_at")
	}
}

func TestSessionExpired(t *testing.T) {
	session := NewSession(uuid.New(), 5, time.Hour)

	if session.Expired(session.StartedAt.Add(30 * time.Minute)) {
		t.Fatal("session should not be expired before its window closes")
	}
	if !session.Expired(session.StartedAt.Add(2 * time.Hour)) {
		t.Fatal("session should be expired after its window closes")
	}

	session.Status = SessionStatusEnded
	if session.Expired(session.StartedAt.Add(2 * time.Hour)) {
		t.Fatal("ended session is terminal, not expired")
	}
}

func TestRoomNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		session := NewSession(uuid.New(), 1, time.Hour)
		if seen[session.RoomName] {
			t.Fatalf("duplicate room name %q", session.RoomName)
		}
		seen[session.RoomName] = true
	}
}
