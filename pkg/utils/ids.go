package utils

import "github.com/google/uuid"

var newV7 = uuid.NewV7

// NewTimeOrderedID returns a UUIDv7. Client secrets and state history rows
// are shown in creation order, and time-ordered ids keep that ordering
// stable without an extra sort column. Falls back to a random v4 id when
// the v7 clock source fails.
func NewTimeOrderedID() uuid.UUID {
	id, err := newV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
