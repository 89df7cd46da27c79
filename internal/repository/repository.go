package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRequestNotFound = errors.New("join request not found")
	ErrRoomNameExists  = errors.New("room name already exists")
	// ErrStatusConflict means a conditional status update found the row in a
	// different state than expected.
	ErrStatusConflict = errors.New("status conflict")
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	GetByRoomName(ctx context.Context, roomName string) (*domain.Session, error)
	// UpdateStatus transitions a session from one status to another. The
	// update is conditional on the prior status so two callers cannot both
	// perform the same transition.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.SessionStatus, endedAt time.Time) (*domain.Session, error)
}

type JoinRequestRepository interface {
	Create(ctx context.Context, request *domain.JoinRequest) error
	GetByID(ctx context.Context, sessionID, id uuid.UUID) (*domain.JoinRequest, error)
	// ListBySession returns every request of the session ordered by creation
	// time ascending.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.JoinRequest, error)
	// UpdateStatus resolves a request, conditional on its current status.
	UpdateStatus(ctx context.Context, sessionID, id uuid.UUID, from, to domain.JoinRequestStatus, credential string) (*domain.JoinRequest, error)
	CountByStatus(ctx context.Context, sessionID uuid.UUID, status domain.JoinRequestStatus) (int64, error)
}
