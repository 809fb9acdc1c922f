package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"devhub.backend/internal/domain/entities"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *entities.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error)
	GetByClientID(ctx context.Context, clientID string) (*entities.Application, error)
	GetByVerificationCode(ctx context.Context, code string) (*entities.Application, error)
	// ExistsPromotedWithName reports whether any application other than
	// excludeID with the same normalized name has left TESTING.
	ExistsPromotedWithName(ctx context.Context, normalizedName string, excludeID uuid.UUID) (bool, error)
	// UpdateState performs a state-conditioned write: the update succeeds
	// only if the stored state still equals expected. A failed condition
	// is reported as ErrInvalidStateTransition.
	UpdateState(ctx context.Context, id uuid.UUID, expected entities.State, next entities.ApplicationState) error
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateRateLimitTier(ctx context.Context, id uuid.UUID, tier entities.RateLimitTier) error
	UpdateIPAllowlist(ctx context.Context, id uuid.UUID, allowlist []string) error
	// Collaborator and client-secret writes are version-conditioned: the
	// write succeeds only if the stored application version still equals
	// expectedVersion. A failed condition is reported as
	// ErrConcurrentModification.
	ReplaceCollaborators(ctx context.Context, id uuid.UUID, expectedVersion int64, collaborators []entities.Collaborator) error
	AddClientSecret(ctx context.Context, id uuid.UUID, expectedVersion int64, secret *entities.ClientSecret) error
	DeleteClientSecret(ctx context.Context, id uuid.UUID, expectedVersion int64, secretID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*entities.Application, int, error)
	// FindWithExpiredVerification returns applications stuck in
	// PENDING_REQUESTER_VERIFICATION whose code was issued before
	// now minus validity.
	FindWithExpiredVerification(ctx context.Context, validity time.Duration, now time.Time) ([]*entities.Application, error)
	// AllTiersAndKeys lists (name, serverToken, tier) for every application,
	// for the gateway reconciliation sweep.
	AllTiersAndKeys(ctx context.Context) ([]entities.GatewayAssignment, error)
}
