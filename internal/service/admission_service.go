package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/coachly/liveclass/internal/repository"
	"github.com/coachly/liveclass/internal/token"
	"github.com/coachly/liveclass/lib/logger/sl"
	"github.com/google/uuid"
)

var (
	ErrSessionNotLive   = errors.New("session is not live")
	ErrCapacityExceeded = errors.New("session capacity exceeded")
	ErrAlreadyResolved  = errors.New("request already resolved")
)

// AdmissionService owns the join-request state machine and the capacity
// invariant: the approved count never exceeds the session capacity, even
// under concurrent approvals.
type AdmissionService struct {
	lifecycle SessionInteractor
	requests  repository.JoinRequestRepository
	issuer    token.Issuer
	events    EventPublisher
	log       *slog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewAdmissionService(lifecycle SessionInteractor, requests repository.JoinRequestRepository, issuer token.Issuer, events EventPublisher, log *slog.Logger) *AdmissionService {
	if log == nil {
		log = slog.Default()
	}
	return &AdmissionService{
		lifecycle: lifecycle,
		requests:  requests,
		issuer:    issuer,
		events:    events,
		log:       log,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// RequestJoin creates a pending admission request for a live session. The
// waiting room is unbounded; capacity is enforced at approval only.
func (s *AdmissionService) RequestJoin(ctx context.Context, sessionID uuid.UUID, displayName string) (*domain.JoinRequest, error) {
	const op = "service.admission.request"
	log := s.log.With(slog.String("op", op), slog.String("session_id", sessionID.String()))

	name, err := domain.SanitizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	session, err := s.lifecycle.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionStatusLive {
		return nil, ErrSessionNotLive
	}

	request := domain.NewJoinRequest(sessionID, name)
	if err := s.requests.Create(ctx, request); err != nil {
		log.Error("failed to create join request", sl.Err(err))
		return nil, err
	}

	log.Info("join requested",
		"request_id", request.ID.String(),
		"display_name", request.DisplayName,
	)
	s.events.Publish(domain.NewRequestEvent(domain.EventRequestCreated, request))
	return request, nil
}

// Approve admits a pending request if capacity allows, minting its
// subscribe-only room credential. The capacity check and the status
// transition run inside a per-session critical section so two racing
// approvals cannot overshoot the limit.
func (s *AdmissionService) Approve(ctx context.Context, sessionID, requestID, callerID uuid.UUID) (*domain.JoinRequest, error) {
	const op = "service.admission.approve"
	log := s.log.With(
		slog.String("op", op),
		slog.String("session_id", sessionID.String()),
		slog.String("request_id", requestID.String()),
	)

	session, err := s.authorize(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	request, err := s.requests.GetByID(ctx, sessionID, requestID)
	if err != nil {
		return nil, err
	}
	if request.Resolved() {
		return nil, ErrAlreadyResolved
	}

	approved, err := s.requests.CountByStatus(ctx, sessionID, domain.JoinRequestStatusApproved)
	if err != nil {
		return nil, err
	}
	if approved >= int64(session.Capacity) {
		return nil, ErrCapacityExceeded
	}

	credential, err := s.issuer.Issue("guest-"+requestID.String(), session.RoomName, false)
	if err != nil {
		log.Error("guest credential issuance failed", sl.Err(err))
		return nil, err
	}

	updated, err := s.requests.UpdateStatus(ctx, sessionID, requestID,
		domain.JoinRequestStatusPending, domain.JoinRequestStatusApproved, credential)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrAlreadyResolved
		}
		return nil, err
	}

	log.Info("request approved")
	s.events.Publish(domain.NewRequestEvent(domain.EventRequestUpdated, updated))
	return updated, nil
}

// Reject resolves a pending request negatively. The credential stays empty.
func (s *AdmissionService) Reject(ctx context.Context, sessionID, requestID, callerID uuid.UUID) (*domain.JoinRequest, error) {
	const op = "service.admission.reject"
	log := s.log.With(
		slog.String("op", op),
		slog.String("session_id", sessionID.String()),
		slog.String("request_id", requestID.String()),
	)

	if _, err := s.authorize(ctx, sessionID, callerID); err != nil {
		return nil, err
	}

	updated, err := s.requests.UpdateStatus(ctx, sessionID, requestID,
		domain.JoinRequestStatusPending, domain.JoinRequestStatusRejected, "")
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrAlreadyResolved
		}
		return nil, err
	}

	log.Info("request rejected")
	s.events.Publish(domain.NewRequestEvent(domain.EventRequestUpdated, updated))
	return updated, nil
}

// ListRequests returns every request of the session in creation order, for
// the owner's console.
func (s *AdmissionService) ListRequests(ctx context.Context, sessionID, callerID uuid.UUID) ([]*domain.JoinRequest, error) {
	session, err := s.lifecycle.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	return s.requests.ListBySession(ctx, sessionID)
}

// GetRequestStatus is unauthenticated: possession of the request id is the
// only credential a student needs to poll their own request.
func (s *AdmissionService) GetRequestStatus(ctx context.Context, sessionID, requestID uuid.UUID) (*domain.JoinRequest, error) {
	return s.requests.GetByID(ctx, sessionID, requestID)
}

func (s *AdmissionService) ApprovedCount(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	return s.requests.CountByStatus(ctx, sessionID, domain.JoinRequestStatusApproved)
}

// authorize resolves the session through the lazy-expiry path and checks the
// caller owns a still-live session. The expiry check therefore always
// happens-before any admission decision.
func (s *AdmissionService) authorize(ctx context.Context, sessionID, callerID uuid.UUID) (*domain.Session, error) {
	session, err := s.lifecycle.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	if session.Status != domain.SessionStatusLive {
		return nil, ErrSessionNotLive
	}
	return session, nil
}

func (s *AdmissionService) sessionLock(sessionID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}
