package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/infrastructure/models"
)

// SubscriptionRepository implements subscription data operations
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create persists a new (application, api) relation. A racing duplicate
// insert trips the composite primary key and is reported as
// ErrSubscriptionAlreadyExists.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *entities.Subscription) error {
	m := &models.Subscription{
		ApplicationID: sub.ApplicationID,
		ApiContext:    sub.Api.Context,
		ApiVersion:    sub.Api.Version,
		CreatedAt:     sub.CreatedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrSubscriptionAlreadyExists
		}
		return err
	}
	return nil
}

// isDuplicateKey recognizes unique-constraint violations across the gorm
// translation layer, the postgres driver and the sqlite test driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Delete removes the relation; deleting an absent relation is a no-op
func (r *SubscriptionRepository) Delete(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Where("application_id = ? AND api_context = ? AND api_version = ?", appID, api.Context, api.Version).
		Delete(&models.Subscription{}).Error
}

// Exists reports whether the application is subscribed to the API
func (r *SubscriptionRepository) Exists(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Subscription{}).
		Where("application_id = ? AND api_context = ? AND api_version = ?", appID, api.Context, api.Version).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByApplication returns all subscriptions of an application
func (r *SubscriptionRepository) ListByApplication(ctx context.Context, appID uuid.UUID) ([]*entities.Subscription, error) {
	var ms []models.Subscription
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("application_id = ?", appID).
		Order("api_context ASC, api_version ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return toSubscriptionEntities(ms), nil
}

// List returns all subscriptions with pagination
func (r *SubscriptionRepository) List(ctx context.Context, limit, offset int) ([]*entities.Subscription, int, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Subscription{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Order("application_id ASC, api_context ASC, api_version ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var ms []models.Subscription
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return toSubscriptionEntities(ms), int(total), nil
}

// DeleteByApplication removes every subscription of an application
func (r *SubscriptionRepository) DeleteByApplication(ctx context.Context, appID uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Where("application_id = ?", appID).
		Delete(&models.Subscription{}).Error
}

// SearchCollaborators finds collaborators of applications subscribed to the
// given API whose email contains partialEmail (case-insensitive)
func (r *SubscriptionRepository) SearchCollaborators(ctx context.Context, api entities.ApiIdentifier, partialEmail string) ([]entities.CollaboratorSearchResult, error) {
	type row struct {
		ApplicationID   uuid.UUID
		ApplicationName string
		Email           string
	}

	var rows []row
	err := GetDB(ctx, r.db).WithContext(ctx).
		Table("collaborators").
		Select("collaborators.application_id AS application_id, applications.name AS application_name, collaborators.email AS email").
		Joins("JOIN subscriptions ON subscriptions.application_id = collaborators.application_id").
		Joins("JOIN applications ON applications.id = collaborators.application_id").
		Where("subscriptions.api_context = ? AND subscriptions.api_version = ?", api.Context, api.Version).
		Where("collaborators.email_lower LIKE ?", "%"+strings.ToLower(partialEmail)+"%").
		Where("applications.deleted_at IS NULL").
		Order("collaborators.email ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]entities.CollaboratorSearchResult, 0, len(rows))
	for _, rw := range rows {
		results = append(results, entities.CollaboratorSearchResult{
			ApplicationID:   rw.ApplicationID,
			ApplicationName: rw.ApplicationName,
			Email:           rw.Email,
		})
	}
	return results, nil
}

func toSubscriptionEntities(ms []models.Subscription) []*entities.Subscription {
	subs := make([]*entities.Subscription, 0, len(ms))
	for _, m := range ms {
		subs = append(subs, &entities.Subscription{
			ApplicationID: m.ApplicationID,
			Api: entities.ApiIdentifier{
				Context: m.ApiContext,
				Version: m.ApiVersion,
			},
			CreatedAt: m.CreatedAt,
		})
	}
	return subs
}
