package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxDisplayNameLength = 64

var ErrDisplayNameEmpty = errors.New("display name is required")

type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "pending"
	JoinRequestStatusApproved JoinRequestStatus = "approved"
	JoinRequestStatusRejected JoinRequestStatus = "rejected"
)

// JoinRequest is one student's admission attempt. It belongs to exactly one
// session and resolves exactly once: pending goes to approved or rejected and
// never comes back.
type JoinRequest struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	DisplayName string
	Status      JoinRequestStatus
	Credential  string
	CreatedAt   time.Time
}

func NewJoinRequest(sessionID uuid.UUID, displayName string) *JoinRequest {
	return &JoinRequest{
		ID:          uuid.New(),
		SessionID:   sessionID,
		DisplayName: displayName,
		Status:      JoinRequestStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
}

// Resolved reports whether the request has reached a terminal state.
func (r *JoinRequest) Resolved() bool {
	return r.Status != JoinRequestStatusPending
}

// SanitizeDisplayName trims the name, collapses inner whitespace and caps its
// length.
func SanitizeDisplayName(raw string) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", ErrDisplayNameEmpty
	}
	name := strings.Join(fields, " ")
	runes := []rune(name)
	if len(runes) > maxDisplayNameLength {
		name = string(runes[:maxDisplayNameLength])
	}
	return name, nil
}
