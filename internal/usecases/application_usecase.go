package usecases

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/domain/repositories"
	"devhub.backend/internal/domain/services"
	"devhub.backend/pkg/crypto"
	"devhub.backend/pkg/logger"
	"devhub.backend/pkg/utils"
)

const (
	clientIDByteLength    = 16
	serverTokenByteLength = 32
)

var (
	applicationNow   = time.Now
	generateHexToken = crypto.GenerateHexToken
)

// CreateApplicationInput carries the caller-supplied fields of a new
// application registration.
type CreateApplicationInput struct {
	Name        string
	Description string
	Environment entities.Environment
	AccessType  entities.AccessType
	OwnerEmail  string
	OwnerUserID *uuid.UUID
}

// ApplicationUsecase manages application registration, lookup and removal
type ApplicationUsecase struct {
	appRepo       repositories.ApplicationRepository
	subRepo       repositories.SubscriptionRepository
	historyRepo   repositories.StateHistoryRepository
	uow           repositories.UnitOfWork
	gatewayClient services.GatewayClient
	hasher        *crypto.Hasher
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo repositories.ApplicationRepository,
	subRepo repositories.SubscriptionRepository,
	historyRepo repositories.StateHistoryRepository,
	uow repositories.UnitOfWork,
	gatewayClient services.GatewayClient,
	hasher *crypto.Hasher,
) *ApplicationUsecase {
	return &ApplicationUsecase{
		appRepo:       appRepo,
		subRepo:       subRepo,
		historyRepo:   historyRepo,
		uow:           uow,
		gatewayClient: gatewayClient,
		hasher:        hasher,
	}
}

// CreateApplication registers a new application in TESTING with a fresh
// client ID, server token and one initial client secret. The plaintext
// secret is returned exactly once. The owner becomes the first
// administrator.
func (u *ApplicationUsecase) CreateApplication(ctx context.Context, input CreateApplicationInput) (*entities.Application, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", domainerrors.BadRequest("application name is required")
	}
	if input.OwnerEmail == "" {
		return nil, "", domainerrors.BadRequest("owner email is required")
	}
	if !input.AccessType.IsValid() {
		return nil, "", domainerrors.BadRequest("unknown access type")
	}
	if input.Environment == "" {
		input.Environment = entities.EnvironmentSandbox
	}

	clientID, err := generateHexToken(clientIDByteLength)
	if err != nil {
		return nil, "", domainerrors.InternalError(err)
	}
	serverToken, err := generateHexToken(serverTokenByteLength)
	if err != nil {
		return nil, "", domainerrors.InternalError(err)
	}
	plaintext, err := generateClientSecret()
	if err != nil {
		return nil, "", domainerrors.InternalError(err)
	}
	hash, err := u.hasher.Hash(ctx, plaintext)
	if err != nil {
		return nil, "", domainerrors.InternalError(err)
	}

	now := applicationNow().UTC()
	app := &entities.Application{
		ID:          utils.NewTimeOrderedID(),
		Name:        name,
		Description: input.Description,
		Environment: input.Environment,
		AccessType:  input.AccessType,
		State: entities.ApplicationState{
			State:     entities.StateTesting,
			UpdatedOn: now,
		},
		RateLimitTier: entities.TierBronze,
		Collaborators: []entities.Collaborator{
			{Email: input.OwnerEmail, Role: entities.RoleAdministrator, UserID: input.OwnerUserID},
		},
		Credentials: entities.Credentials{
			ClientID:    clientID,
			ServerToken: serverToken,
			ClientSecrets: []entities.ClientSecret{
				{
					ID:         utils.NewTimeOrderedID(),
					SecretHint: crypto.SecretHint(plaintext),
					SecretHash: hash,
					CreatedAt:  now,
				},
			},
		},
		CreatedOn: now,
	}

	if err := u.appRepo.Create(ctx, app); err != nil {
		if err == domainerrors.ErrApplicationAlreadyExists {
			return nil, "", domainerrors.Conflict("APPLICATION_ALREADY_EXISTS",
				"an application with this name already exists", err)
		}
		return nil, "", domainerrors.InternalError(err)
	}

	logger.Info(ctx, "Application created",
		zap.String("application_id", app.ID.String()),
		zap.String("name", app.Name),
		zap.String("owner", input.OwnerEmail),
	)

	// best-effort: the reconciliation sweep repairs a missed registration
	if err := u.gatewayClient.CreateOrUpdate(ctx, app.Name, serverToken, app.RateLimitTier); err != nil {
		logger.Warn(ctx, "Failed to register application at gateway",
			zap.String("application_id", app.ID.String()),
			zap.Error(err),
		)
	}

	return app, plaintext, nil
}

// GetApplication returns an application by ID
func (u *ApplicationUsecase) GetApplication(ctx context.Context, appID uuid.UUID) (*entities.Application, error) {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}
	return app, nil
}

// ListApplications returns a page of applications with the total count
func (u *ApplicationUsecase) ListApplications(ctx context.Context, limit, offset int) ([]*entities.Application, int, error) {
	apps, total, err := u.appRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, domainerrors.InternalError(err)
	}
	return apps, total, nil
}

// DeleteApplication removes the application with its subscriptions and
// state history in one transaction, then removes it from the gateway.
// The gateway removal is idempotent and best-effort.
func (u *ApplicationUsecase) DeleteApplication(ctx context.Context, appID uuid.UUID) error {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return mapNotFound(err, "application not found")
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.subRepo.DeleteByApplication(txCtx, appID); err != nil {
			return err
		}
		if err := u.historyRepo.DeleteByApplication(txCtx, appID); err != nil {
			return err
		}
		return u.appRepo.Delete(txCtx, appID)
	})
	if err != nil {
		return domainerrors.InternalError(err)
	}

	logger.Info(ctx, "Application deleted",
		zap.String("application_id", appID.String()),
		zap.String("name", app.Name),
	)

	if err := u.gatewayClient.Delete(ctx, app.Name); err != nil {
		logger.Warn(ctx, "Failed to remove application from gateway",
			zap.String("application_id", appID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// UpdateIPAllowlist replaces the allowlist. Entries are single addresses
// or CIDR blocks; an empty list clears the restriction.
func (u *ApplicationUsecase) UpdateIPAllowlist(ctx context.Context, appID uuid.UUID, allowlist []string) (*entities.Application, error) {
	cleaned := make([]string, 0, len(allowlist))
	for _, entry := range allowlist {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !validAllowlistEntry(entry) {
			return nil, domainerrors.NewAppError(400, "INVALID_IP_ALLOWLIST",
				"invalid ip allowlist entry: "+entry, domainerrors.ErrInvalidIpAllowlist)
		}
		cleaned = append(cleaned, entry)
	}

	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}
	if err := u.appRepo.UpdateIPAllowlist(ctx, appID, cleaned); err != nil {
		return nil, domainerrors.InternalError(err)
	}
	app.IPAllowlist = cleaned

	logger.Info(ctx, "IP allowlist updated",
		zap.String("application_id", appID.String()),
		zap.Int("entries", len(cleaned)),
	)
	return app, nil
}

func validAllowlistEntry(entry string) bool {
	if strings.Contains(entry, "/") {
		_, _, err := net.ParseCIDR(entry)
		return err == nil
	}
	return net.ParseIP(entry) != nil
}
