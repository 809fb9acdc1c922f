package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Application struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Version        int64     `gorm:"not null;default:1"`
	Name           string    `gorm:"type:varchar(100);not null"`
	NormalizedName string    `gorm:"type:varchar(100);index;not null"`
	Description    string    `gorm:"type:text"`
	Environment    string    `gorm:"type:varchar(20);not null;default:'PRODUCTION'"`
	AccessType     string    `gorm:"type:varchar(20);not null;default:'STANDARD'"`

	State              string     `gorm:"type:varchar(40);not null;default:'TESTING'"`
	StateRequestedBy   string     `gorm:"type:varchar(255)"`
	StateActorID       *uuid.UUID `gorm:"type:uuid"`
	StateUpdatedOn     time.Time
	VerificationCode   *string    `gorm:"type:varchar(64);uniqueIndex"`
	VerificationSentAt *time.Time `gorm:"type:timestamp"`

	Blocked       bool   `gorm:"not null;default:false"`
	RateLimitTier string `gorm:"type:varchar(20);not null;default:'BRONZE'"`

	ClientID    string `gorm:"type:varchar(64);uniqueIndex;not null"`
	ServerToken string `gorm:"type:varchar(64);uniqueIndex;not null"`

	IPAllowlist      string `gorm:"type:text"` // JSON-encoded list of CIDR blocks
	CheckInformation string `gorm:"type:text"` // JSON-encoded terms-of-use agreement records

	LastAccess *time.Time `gorm:"type:timestamp"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	Collaborators []Collaborator `gorm:"foreignKey:ApplicationID"`
	ClientSecrets []ClientSecret `gorm:"foreignKey:ApplicationID"`
}

type Collaborator struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ApplicationID uuid.UUID  `gorm:"type:uuid;index;not null"`
	Email         string     `gorm:"type:varchar(255);not null"`
	EmailLower    string     `gorm:"type:varchar(255);index;not null"`
	Role          string     `gorm:"type:varchar(20);not null"`
	UserID        *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ClientSecret struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ApplicationID uuid.UUID `gorm:"type:uuid;index;not null"`
	SecretHint    string    `gorm:"type:varchar(8);not null"`
	SecretHash    string    `gorm:"type:varchar(255);not null"`
	// Position preserves creation order for display
	Position  int `gorm:"not null;default:0"`
	CreatedAt time.Time
}
