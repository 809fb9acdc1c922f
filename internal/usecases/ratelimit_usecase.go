package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/domain/repositories"
	"devhub.backend/internal/domain/services"
	"devhub.backend/pkg/logger"
)

// RateLimitUsecase keeps the stored rate-limit tier and the gateway's
// usage-plan assignment in step. The store is the source of truth; gateway
// drift is repaired by the reconciliation sweep.
type RateLimitUsecase struct {
	appRepo       repositories.ApplicationRepository
	gatewayClient services.GatewayClient
}

// NewRateLimitUsecase creates a new rate limit usecase
func NewRateLimitUsecase(appRepo repositories.ApplicationRepository, gatewayClient services.GatewayClient) *RateLimitUsecase {
	return &RateLimitUsecase{
		appRepo:       appRepo,
		gatewayClient: gatewayClient,
	}
}

// UpdateTier persists the new tier, then pushes the matching usage plan to
// the gateway. A gateway failure does not revert the stored tier.
func (u *RateLimitUsecase) UpdateTier(ctx context.Context, appID uuid.UUID, tier entities.RateLimitTier) (*entities.Application, error) {
	if !tier.IsValid() {
		return nil, domainerrors.BadRequest("unknown rate limit tier")
	}

	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}
	if err := u.appRepo.UpdateRateLimitTier(ctx, appID, tier); err != nil {
		return nil, domainerrors.InternalError(err)
	}
	app.RateLimitTier = tier

	logger.Info(ctx, "Rate limit tier updated",
		zap.String("application_id", appID.String()),
		zap.String("tier", string(tier)),
	)

	if err := u.gatewayClient.CreateOrUpdate(ctx, app.Name, app.Credentials.ServerToken, tier); err != nil {
		logger.Warn(ctx, "Failed to push tier to gateway",
			zap.String("application_id", appID.String()),
			zap.String("tier", string(tier)),
			zap.Error(err),
		)
	}
	return app, nil
}

// Reconcile re-asserts every application's usage plan at the gateway and
// returns how many assertions failed.
func (u *RateLimitUsecase) Reconcile(ctx context.Context) (int, error) {
	assignments, err := u.appRepo.AllTiersAndKeys(ctx)
	if err != nil {
		return 0, domainerrors.InternalError(err)
	}

	failed := 0
	for _, a := range assignments {
		if err := u.gatewayClient.CreateOrUpdate(ctx, a.ApplicationName, a.ServerToken, a.Tier); err != nil {
			failed++
			logger.Warn(ctx, "Gateway reconciliation failed for application",
				zap.String("application", a.ApplicationName),
				zap.String("tier", string(a.Tier)),
				zap.Error(err),
			)
		}
	}
	return failed, nil
}
