package repositories

import (
	"context"

	"github.com/google/uuid"
	"devhub.backend/internal/domain/entities"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entities.Subscription) error
	// Delete removes the (application, api) relation. Deleting an absent
	// relation is a no-op and returns no error.
	Delete(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) error
	Exists(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) (bool, error)
	ListByApplication(ctx context.Context, appID uuid.UUID) ([]*entities.Subscription, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Subscription, int, error)
	DeleteByApplication(ctx context.Context, appID uuid.UUID) error
	// SearchCollaborators finds collaborators of applications subscribed to
	// the given API whose email contains partialEmail (case-insensitive).
	SearchCollaborators(ctx context.Context, api entities.ApiIdentifier, partialEmail string) ([]entities.CollaboratorSearchResult, error)
}
