package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/coachly/liveclass/internal/repository"
	"github.com/coachly/liveclass/internal/token"
	"github.com/coachly/liveclass/lib/logger/sl"
	"github.com/google/uuid"
)

var (
	ErrNotOwner        = errors.New("caller is not the session owner")
	ErrInvalidCapacity = errors.New("capacity is out of range")
)

// SessionService owns the live -> ended transition, including lazy expiry:
// every read of a session settles expiry before anything else looks at it.
type SessionService struct {
	sessions        repository.SessionRepository
	issuer          token.Issuer
	events          EventPublisher
	log             *slog.Logger
	duration        time.Duration
	defaultCapacity int
	maxCapacity     int
	now             func() time.Time
}

func NewSessionService(sessions repository.SessionRepository, issuer token.Issuer, events EventPublisher, log *slog.Logger, duration time.Duration, defaultCapacity, maxCapacity int) *SessionService {
	if log == nil {
		log = slog.Default()
	}
	if duration <= 0 {
		duration = 2 * time.Hour
	}
	if defaultCapacity <= 0 {
		defaultCapacity = 10
	}
	if maxCapacity <= 0 {
		maxCapacity = 100
	}
	return &SessionService{
		sessions:        sessions,
		issuer:          issuer,
		events:          events,
		log:             log,
		duration:        duration,
		defaultCapacity: defaultCapacity,
		maxCapacity:     maxCapacity,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// StartSession creates a live session and mints the owner's publish
// credential for its media room.
func (s *SessionService) StartSession(ctx context.Context, ownerID uuid.UUID, capacity int) (*domain.Session, string, error) {
	const op = "service.session.start"
	log := s.log.With(slog.String("op", op), slog.String("owner_id", ownerID.String()))

	if ownerID == uuid.Nil {
		return nil, "", errors.New("owner is required")
	}
	if capacity == 0 {
		capacity = s.defaultCapacity
	}
	if capacity < 0 || capacity > s.maxCapacity {
		return nil, "", ErrInvalidCapacity
	}

	for {
		session := domain.NewSession(ownerID, capacity, s.duration)

		// Mint the credential first so an issuer failure leaves nothing behind.
		credential, err := s.issuer.Issue("teacher-"+ownerID.String(), session.RoomName, true)
		if err != nil {
			log.Error("owner credential issuance failed", sl.Err(err))
			return nil, "", err
		}

		if err := s.sessions.Create(ctx, session); err != nil {
			if errors.Is(err, repository.ErrRoomNameExists) {
				continue
			}
			return nil, "", err
		}

		log.Info("session started",
			"session_id", session.ID.String(),
			"room_name", session.RoomName,
			"capacity", session.Capacity,
			"expires_at", session.ExpiresAt,
		)
		return session, credential, nil
	}
}

// GetState returns the current session state, applying lazy expiry first: a
// live session past its expiry is transitioned to ended before it is returned.
func (s *SessionService) GetState(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.Expired(s.now()) {
		return session, nil
	}

	updated, err := s.sessions.UpdateStatus(ctx, sessionID, domain.SessionStatusLive, domain.SessionStatusEnded, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			// Lost the expiry race; the stored state is already terminal.
			return s.sessions.GetByID(ctx, sessionID)
		}
		return nil, err
	}

	s.log.Info("session expired",
		"session_id", sessionID.String(),
		"expired_at", session.ExpiresAt,
	)
	s.events.Publish(domain.NewSessionEndedEvent(sessionID))
	return updated, nil
}

// EndSession terminates a live session. Ending an already-ended session is a
// no-op returning the terminal state.
func (s *SessionService) EndSession(ctx context.Context, sessionID, callerID uuid.UUID) (*domain.Session, error) {
	const op = "service.session.end"
	log := s.log.With(slog.String("op", op), slog.String("session_id", sessionID.String()))

	session, err := s.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	if session.Status == domain.SessionStatusEnded {
		return session, nil
	}

	updated, err := s.sessions.UpdateStatus(ctx, sessionID, domain.SessionStatusLive, domain.SessionStatusEnded, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return s.sessions.GetByID(ctx, sessionID)
		}
		return nil, err
	}

	log.Info("session ended")
	s.events.Publish(domain.NewSessionEndedEvent(sessionID))
	return updated, nil
}
