package services

import (
	"context"

	"devhub.backend/internal/domain/entities"
)

// GatewayClient keeps the external API gateway's usage-plan assignment in
// step with the stored rate-limit tier.
type GatewayClient interface {
	// CreateOrUpdate asserts that the application's API key at the gateway
	// is a member of the usage plan matching tier.
	CreateOrUpdate(ctx context.Context, appName, serverToken string, tier entities.RateLimitTier) error
	// Delete removes the application at the gateway. A not-found response
	// is treated as success.
	Delete(ctx context.Context, appName string) error
}
