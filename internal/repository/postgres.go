package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/coachly/liveclass/internal/repository/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresSessionRepository struct {
	db *gorm.DB
}

func NewPostgresSessionRepository(db *gorm.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil {
		return errors.New("session is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelSession(session)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrRoomNameExists
		}
		return err
	}
	return nil
}

func (r *PostgresSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session model.Session
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return toDomainSession(&session), nil
}

func (r *PostgresSessionRepository) GetByRoomName(ctx context.Context, roomName string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session model.Session
	err := r.db.WithContext(ctx).First(&session, "room_name = ?", roomName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return toDomainSession(&session), nil
}

func (r *PostgresSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.SessionStatus, endedAt time.Time) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	updates := map[string]any{"status": string(to)}
	if to == domain.SessionStatusEnded {
		updates["ended_at"] = endedAt.UTC()
	}

	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or someone else got there first.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStatusConflict
	}

	return r.GetByID(ctx, id)
}

type PostgresJoinRequestRepository struct {
	db *gorm.DB
}

func NewPostgresJoinRequestRepository(db *gorm.DB) *PostgresJoinRequestRepository {
	return &PostgresJoinRequestRepository{db: db}
}

func (r *PostgresJoinRequestRepository) Create(ctx context.Context, request *domain.JoinRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if request == nil {
		return errors.New("request is nil")
	}

	return r.db.WithContext(ctx).Create(toModelJoinRequest(request)).Error
}

func (r *PostgresJoinRequestRepository) GetByID(ctx context.Context, sessionID, id uuid.UUID) (*domain.JoinRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var request model.JoinRequest
	err := r.db.WithContext(ctx).First(&request, "id = ? AND session_id = ?", id, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	return toDomainJoinRequest(&request), nil
}

func (r *PostgresJoinRequestRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.JoinRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var requests []model.JoinRequest
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	result := make([]*domain.JoinRequest, 0, len(requests))
	for i := range requests {
		result = append(result, toDomainJoinRequest(&requests[i]))
	}
	return result, nil
}

func (r *PostgresJoinRequestRepository) UpdateStatus(ctx context.Context, sessionID, id uuid.UUID, from, to domain.JoinRequestStatus, credential string) (*domain.JoinRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	updates := map[string]any{"status": string(to)}
	if credential == "" {
		updates["credential"] = gorm.Expr("NULL")
	} else {
		updates["credential"] = credential
	}

	res := r.db.WithContext(ctx).
		Model(&model.JoinRequest{}).
		Where("id = ? AND session_id = ? AND status = ?", id, sessionID, string(from)).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, sessionID, id); err != nil {
			return nil, err
		}
		return nil, ErrStatusConflict
	}

	return r.GetByID(ctx, sessionID, id)
}

func (r *PostgresJoinRequestRepository) CountByStatus(ctx context.Context, sessionID uuid.UUID, status domain.JoinRequestStatus) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.JoinRequest{}).
		Where("session_id = ? AND status = ?", sessionID, string(status)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func toModelSession(session *domain.Session) *model.Session {
	var endedAt *time.Time
	if session.EndedAt != nil {
		t := session.EndedAt.UTC()
		endedAt = &t
	}

	return &model.Session{
		ID:        session.ID,
		OwnerID:   session.OwnerID,
		RoomName:  session.RoomName,
		Status:    string(session.Status),
		Capacity:  session.Capacity,
		CreatedAt: session.CreatedAt.UTC(),
		StartedAt: session.StartedAt.UTC(),
		ExpiresAt: session.ExpiresAt.UTC(),
		EndedAt:   endedAt,
	}
}

func toDomainSession(session *model.Session) *domain.Session {
	var endedAt *time.Time
	if session.EndedAt != nil {
		t := session.EndedAt.UTC()
		endedAt = &t
	}

	return &domain.Session{
		ID:        session.ID,
		OwnerID:   session.OwnerID,
		RoomName:  session.RoomName,
		Status:    domain.SessionStatus(session.Status),
		Capacity:  session.Capacity,
		CreatedAt: session.CreatedAt.UTC(),
		StartedAt: session.StartedAt.UTC(),
		ExpiresAt: session.ExpiresAt.UTC(),
		EndedAt:   endedAt,
	}
}

func toModelJoinRequest(request *domain.JoinRequest) *model.JoinRequest {
	var credential *string
	if request.Credential != "" {
		c := request.Credential
		credential = &c
	}

	return &model.JoinRequest{
		ID:          request.ID,
		SessionID:   request.SessionID,
		DisplayName: request.DisplayName,
		Status:      string(request.Status),
		Credential:  credential,
		CreatedAt:   request.CreatedAt.UTC(),
	}
}

func toDomainJoinRequest(request *model.JoinRequest) *domain.JoinRequest {
	credential := ""
	if request.Credential != nil {
		credential = *request.Credential
	}

	return &domain.JoinRequest{
		ID:          request.ID,
		SessionID:   request.SessionID,
		DisplayName: request.DisplayName,
		Status:      domain.JoinRequestStatus(request.Status),
		Credential:  credential,
		CreatedAt:   request.CreatedAt.UTC(),
	}
}
