package models

import (
	"time"

	"github.com/google/uuid"
)

// StateTransition rows are append-only; they are inserted alongside the
// state mutation and never updated.
type StateTransition struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ApplicationID uuid.UUID  `gorm:"type:uuid;index;not null"`
	FromState     string     `gorm:"type:varchar(40);not null"`
	ToState       string     `gorm:"type:varchar(40);not null"`
	ActorEmail    string     `gorm:"type:varchar(255)"`
	ActorUserID   *uuid.UUID `gorm:"type:uuid"`
	Reason        string     `gorm:"type:text"`
	CreatedAt     time.Time
}
