package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"devhub.backend/internal/domain/entities"
	"devhub.backend/internal/infrastructure/models"
)

// StateHistoryRepository implements the append-only transition log
type StateHistoryRepository struct {
	db *gorm.DB
}

// NewStateHistoryRepository creates a new state history repository
func NewStateHistoryRepository(db *gorm.DB) *StateHistoryRepository {
	return &StateHistoryRepository{db: db}
}

// Append inserts a transition record
func (r *StateHistoryRepository) Append(ctx context.Context, t *entities.StateTransition) error {
	m := &models.StateTransition{
		ID:            t.ID,
		ApplicationID: t.ApplicationID,
		FromState:     string(t.FromState),
		ToState:       string(t.ToState),
		ActorEmail:    t.ActorEmail,
		ActorUserID:   t.ActorUserID,
		Reason:        t.Reason,
		CreatedAt:     t.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// ListByApplication returns the transition history in creation order
func (r *StateHistoryRepository) ListByApplication(ctx context.Context, appID uuid.UUID) ([]*entities.StateTransition, error) {
	var ms []models.StateTransition
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("application_id = ?", appID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	transitions := make([]*entities.StateTransition, 0, len(ms))
	for _, m := range ms {
		transitions = append(transitions, &entities.StateTransition{
			ID:            m.ID,
			ApplicationID: m.ApplicationID,
			FromState:     entities.State(m.FromState),
			ToState:       entities.State(m.ToState),
			ActorEmail:    m.ActorEmail,
			ActorUserID:   m.ActorUserID,
			Reason:        m.Reason,
			CreatedAt:     m.CreatedAt,
		})
	}
	return transitions, nil
}

// DeleteByApplication removes the history of a deleted application
func (r *StateHistoryRepository) DeleteByApplication(ctx context.Context, appID uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Where("application_id = ?", appID).
		Delete(&models.StateTransition{}).Error
}
