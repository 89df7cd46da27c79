package service

import (
	"context"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/google/uuid"
)

type SessionInteractor interface {
	StartSession(ctx context.Context, ownerID uuid.UUID, capacity int) (*domain.Session, string, error)
	GetState(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error)
	EndSession(ctx context.Context, sessionID, callerID uuid.UUID) (*domain.Session, error)
}

type AdmissionInteractor interface {
	RequestJoin(ctx context.Context, sessionID uuid.UUID, displayName string) (*domain.JoinRequest, error)
	Approve(ctx context.Context, sessionID, requestID, callerID uuid.UUID) (*domain.JoinRequest, error)
	Reject(ctx context.Context, sessionID, requestID, callerID uuid.UUID) (*domain.JoinRequest, error)
	ListRequests(ctx context.Context, sessionID, callerID uuid.UUID) ([]*domain.JoinRequest, error)
	GetRequestStatus(ctx context.Context, sessionID, requestID uuid.UUID) (*domain.JoinRequest, error)
	ApprovedCount(ctx context.Context, sessionID uuid.UUID) (int64, error)
}

// EventPublisher decouples the services from the fanout hub so tests can
// capture emitted events.
type EventPublisher interface {
	Publish(event domain.Event)
}
