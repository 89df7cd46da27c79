package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/google/uuid"
)

// InMemorySessionRepository keeps sessions in process memory. It backs tests
// and DSN-less local runs with the same conditional-update semantics as the
// postgres repository.
type InMemorySessionRepository struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]domain.Session
	roomNames map[string]uuid.UUID
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions:  make(map[uuid.UUID]domain.Session),
		roomNames: make(map[string]uuid.UUID),
	}
}

func (r *InMemorySessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roomNames[session.RoomName]; ok {
		return ErrRoomNameExists
	}

	r.sessions[session.ID] = *session
	r.roomNames[session.RoomName] = session.ID
	return nil
}

func (r *InMemorySessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

func (r *InMemorySessionRepository) GetByRoomName(ctx context.Context, roomName string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.roomNames[roomName]
	if !ok {
		return nil, ErrSessionNotFound
	}

	session := r.sessions[id]
	return &session, nil
}

func (r *InMemorySessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.SessionStatus, endedAt time.Time) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Status != from {
		return nil, ErrStatusConflict
	}

	session.Status = to
	if to == domain.SessionStatusEnded {
		t := endedAt.UTC()
		session.EndedAt = &t
	}
	r.sessions[id] = session

	return &session, nil
}

type InMemoryJoinRequestRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]domain.JoinRequest
}

func NewInMemoryJoinRequestRepository() *InMemoryJoinRequestRepository {
	return &InMemoryJoinRequestRepository{
		requests: make(map[uuid.UUID]domain.JoinRequest),
	}
}

func (r *InMemoryJoinRequestRepository) Create(ctx context.Context, request *domain.JoinRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests[request.ID] = *request
	return nil
}

func (r *InMemoryJoinRequestRepository) GetByID(ctx context.Context, sessionID, id uuid.UUID) (*domain.JoinRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	request, ok := r.requests[id]
	if !ok || request.SessionID != sessionID {
		return nil, ErrRequestNotFound
	}

	return &request, nil
}

func (r *InMemoryJoinRequestRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.JoinRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.JoinRequest, 0)
	for id := range r.requests {
		request := r.requests[id]
		if request.SessionID != sessionID {
			continue
		}
		result = append(result, &request)
	}

	// Tie-break equal timestamps on id so the queue order never shifts
	// between calls.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})

	return result, nil
}

func (r *InMemoryJoinRequestRepository) UpdateStatus(ctx context.Context, sessionID, id uuid.UUID, from, to domain.JoinRequestStatus, credential string) (*domain.JoinRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok || request.SessionID != sessionID {
		return nil, ErrRequestNotFound
	}
	if request.Status != from {
		return nil, ErrStatusConflict
	}

	request.Status = to
	request.Credential = credential
	r.requests[id] = request

	return &request, nil
}

func (r *InMemoryJoinRequestRepository) CountByStatus(ctx context.Context, sessionID uuid.UUID, status domain.JoinRequestStatus) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, request := range r.requests {
		if request.SessionID == sessionID && request.Status == status {
			count++
		}
	}
	return count, nil
}
