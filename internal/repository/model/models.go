package model

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	RoomName  string     `gorm:"size:64;uniqueIndex;not null"`
	Status    string     `gorm:"size:16;not null"`
	Capacity  int        `gorm:"not null"`
	CreatedAt time.Time  `gorm:"not null"`
	StartedAt time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	EndedAt   *time.Time `gorm:""`

	Requests []JoinRequest `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

type JoinRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID   uuid.UUID `gorm:"type:uuid;index;not null"`
	DisplayName string    `gorm:"size:64;not null"`
	Status      string    `gorm:"size:16;index;not null"`
	Credential  *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index;not null"`
}
