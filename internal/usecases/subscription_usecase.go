package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/domain/repositories"
	"devhub.backend/internal/domain/services"
	"devhub.backend/pkg/logger"
	"devhub.backend/pkg/metrics"
)

var subscriptionNow = time.Now

// SubscriptionUsecase manages the application-to-API subscription relation
type SubscriptionUsecase struct {
	appRepo      repositories.ApplicationRepository
	subRepo      repositories.SubscriptionRepository
	eventsClient services.EventsClient
}

// NewSubscriptionUsecase creates a new subscription usecase
func NewSubscriptionUsecase(
	appRepo repositories.ApplicationRepository,
	subRepo repositories.SubscriptionRepository,
	eventsClient services.EventsClient,
) *SubscriptionUsecase {
	return &SubscriptionUsecase{
		appRepo:      appRepo,
		subRepo:      subRepo,
		eventsClient: eventsClient,
	}
}

// Subscribe creates the (application, api) relation and emits a subscribed
// event. The event is best-effort; the relation stands even when emission
// fails.
func (u *SubscriptionUsecase) Subscribe(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) (*entities.Subscription, error) {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}

	exists, err := u.subRepo.Exists(ctx, appID, api)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if exists {
		return nil, domainerrors.Conflict("SUBSCRIPTION_ALREADY_EXISTS",
			"application is already subscribed to this api", domainerrors.ErrSubscriptionAlreadyExists)
	}

	sub := &entities.Subscription{
		ApplicationID: appID,
		Api:           api,
		CreatedAt:     subscriptionNow().UTC(),
	}
	if err := u.subRepo.Create(ctx, sub); err != nil {
		if err == domainerrors.ErrSubscriptionAlreadyExists {
			return nil, domainerrors.Conflict("SUBSCRIPTION_ALREADY_EXISTS",
				"application is already subscribed to this api", err)
		}
		return nil, domainerrors.InternalError(err)
	}
	metrics.SubscriptionEvents.WithLabelValues("subscribe", "success").Inc()

	if !u.eventsClient.SendSubscribed(ctx, app, api) {
		logger.Warn(ctx, "Subscribed event not delivered",
			zap.String("application_id", appID.String()),
			zap.String("api_context", api.Context),
			zap.String("api_version", api.Version),
		)
	}
	return sub, nil
}

// Unsubscribe removes the relation. Removing a subscription that does not
// exist succeeds silently; the unsubscribed event is only emitted when a
// relation was actually removed.
func (u *SubscriptionUsecase) Unsubscribe(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) error {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return mapNotFound(err, "application not found")
	}

	existed, err := u.subRepo.Exists(ctx, appID, api)
	if err != nil {
		return domainerrors.InternalError(err)
	}
	if err := u.subRepo.Delete(ctx, appID, api); err != nil {
		return domainerrors.InternalError(err)
	}
	if !existed {
		return nil
	}
	metrics.SubscriptionEvents.WithLabelValues("unsubscribe", "success").Inc()

	if !u.eventsClient.SendUnsubscribed(ctx, app, api) {
		logger.Warn(ctx, "Unsubscribed event not delivered",
			zap.String("application_id", appID.String()),
			zap.String("api_context", api.Context),
			zap.String("api_version", api.Version),
		)
	}
	return nil
}

// ListByApplication returns the application's subscriptions
func (u *SubscriptionUsecase) ListByApplication(ctx context.Context, appID uuid.UUID) ([]*entities.Subscription, error) {
	if _, err := u.appRepo.GetByID(ctx, appID); err != nil {
		return nil, mapNotFound(err, "application not found")
	}
	subs, err := u.subRepo.ListByApplication(ctx, appID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return subs, nil
}

// IsSubscribed reports whether the application is subscribed to the API
func (u *SubscriptionUsecase) IsSubscribed(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) (bool, error) {
	if _, err := u.appRepo.GetByID(ctx, appID); err != nil {
		return false, mapNotFound(err, "application not found")
	}
	exists, err := u.subRepo.Exists(ctx, appID, api)
	if err != nil {
		return false, domainerrors.InternalError(err)
	}
	return exists, nil
}

// List returns a page of all subscriptions
func (u *SubscriptionUsecase) List(ctx context.Context, limit, offset int) ([]*entities.Subscription, int, error) {
	subs, total, err := u.subRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, domainerrors.InternalError(err)
	}
	return subs, total, nil
}

// SearchCollaborators finds collaborators of applications subscribed to the
// given API by partial email match.
func (u *SubscriptionUsecase) SearchCollaborators(ctx context.Context, api entities.ApiIdentifier, partialEmail string) ([]entities.CollaboratorSearchResult, error) {
	partialEmail = strings.TrimSpace(partialEmail)
	if partialEmail == "" {
		return nil, domainerrors.BadRequest("search term is required")
	}
	results, err := u.subRepo.SearchCollaborators(ctx, api, partialEmail)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return results, nil
}
