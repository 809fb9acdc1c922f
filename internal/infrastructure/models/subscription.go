package models

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	ApplicationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ApiContext    string    `gorm:"type:varchar(255);primaryKey"`
	ApiVersion    string    `gorm:"type:varchar(50);primaryKey"`
	CreatedAt     time.Time
}
