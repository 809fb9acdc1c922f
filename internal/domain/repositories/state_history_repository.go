package repositories

import (
	"context"

	"github.com/google/uuid"
	"devhub.backend/internal/domain/entities"
)

// StateHistoryRepository is the append-only audit trail of lifecycle moves.
// Records are written transactionally alongside the state mutation and are
// never updated or overwritten.
type StateHistoryRepository interface {
	Append(ctx context.Context, transition *entities.StateTransition) error
	ListByApplication(ctx context.Context, appID uuid.UUID) ([]*entities.StateTransition, error)
	DeleteByApplication(ctx context.Context, appID uuid.UUID) error
}
