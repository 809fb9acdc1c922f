package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/domain/repositories"
	"devhub.backend/pkg/crypto"
	"devhub.backend/pkg/logger"
	"devhub.backend/pkg/utils"
)

var (
	credentialNow        = time.Now
	generateClientSecret = crypto.GenerateClientSecret
)

// CredentialUsecase issues, removes and validates client secrets. The
// limit and last-secret checks are enforced against a version-conditioned
// write, so concurrent issuers cannot overshoot the limit and concurrent
// removals cannot drop the set to zero.
type CredentialUsecase struct {
	appRepo     repositories.ApplicationRepository
	uow         repositories.UnitOfWork
	hasher      *crypto.Hasher
	secretLimit int
}

// NewCredentialUsecase creates a new credential usecase
func NewCredentialUsecase(appRepo repositories.ApplicationRepository, uow repositories.UnitOfWork, hasher *crypto.Hasher, secretLimit int) *CredentialUsecase {
	return &CredentialUsecase{
		appRepo:     appRepo,
		uow:         uow,
		hasher:      hasher,
		secretLimit: secretLimit,
	}
}

// AddClientSecret generates a new client secret for the application. The
// plaintext is returned exactly once; only its hash and a display hint are
// stored.
func (u *CredentialUsecase) AddClientSecret(ctx context.Context, appID uuid.UUID, actorEmail string) (*entities.AddClientSecretResponse, error) {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}

	if len(app.Credentials.ClientSecrets) >= u.secretLimit {
		return nil, domainerrors.Conflict("CLIENT_SECRETS_LIMIT_EXCEEDED",
			"client secrets limit exceeded", domainerrors.ErrClientSecretsLimit)
	}

	plaintext, err := generateClientSecret()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	hash, err := u.hasher.Hash(ctx, plaintext)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	secret := &entities.ClientSecret{
		ID:         utils.NewTimeOrderedID(),
		SecretHint: crypto.SecretHint(plaintext),
		SecretHash: hash,
		CreatedAt:  credentialNow().UTC(),
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.appRepo.AddClientSecret(txCtx, appID, app.Version, secret)
	})
	if err != nil {
		return nil, mapWriteConflict(err, "application not found")
	}

	logger.Info(ctx, "Client secret issued",
		zap.String("application_id", appID.String()),
		zap.String("actor", actorEmail),
	)

	updated, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}

	return &entities.AddClientSecretResponse{
		Secret:      plaintext,
		Credentials: updated.Credentials,
	}, nil
}

// DeleteClientSecret removes the identified secret. The last remaining
// secret cannot be removed; that would lock the application out of its
// own credentials.
func (u *CredentialUsecase) DeleteClientSecret(ctx context.Context, appID, secretID uuid.UUID, actorEmail string) (*entities.Credentials, error) {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}

	found := false
	for _, s := range app.Credentials.ClientSecrets {
		if s.ID == secretID {
			found = true
			break
		}
	}
	if !found {
		return nil, domainerrors.NotFound("client secret not found")
	}

	if len(app.Credentials.ClientSecrets) <= 1 {
		return nil, domainerrors.Conflict("LAST_CLIENT_SECRET",
			"cannot delete the last client secret", domainerrors.ErrLastClientSecret)
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.appRepo.DeleteClientSecret(txCtx, appID, app.Version, secretID)
	})
	if err != nil {
		return nil, mapWriteConflict(err, "client secret not found")
	}

	logger.Info(ctx, "Client secret deleted",
		zap.String("application_id", appID.String()),
		zap.String("secret_id", secretID.String()),
		zap.String("actor", actorEmail),
	)

	updated, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}
	return &updated.Credentials, nil
}

// ValidateCredentials looks up the application by client ID and compares
// the secret against each stored hash. On failure it never discloses
// which of the two inputs was wrong.
func (u *CredentialUsecase) ValidateCredentials(ctx context.Context, clientID, clientSecret string) (*entities.Application, error) {
	invalid := domainerrors.Unauthorized("invalid client credentials")

	app, err := u.appRepo.GetByClientID(ctx, clientID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, invalid
		}
		return nil, domainerrors.InternalError(err)
	}

	for _, s := range app.Credentials.ClientSecrets {
		if u.hasher.Compare(ctx, s.SecretHash, clientSecret) {
			return app, nil
		}
	}
	return nil, invalid
}

func mapNotFound(err error, message string) error {
	if err == domainerrors.ErrNotFound {
		return domainerrors.NotFound(message)
	}
	return domainerrors.InternalError(err)
}

// mapWriteConflict maps the failure modes of a version-conditioned write.
// A version mismatch means another editor committed first; the caller is
// told to reload and retry.
func mapWriteConflict(err error, notFoundMessage string) error {
	switch err {
	case domainerrors.ErrConcurrentModification:
		return domainerrors.Conflict("CONCURRENT_MODIFICATION",
			"application was modified concurrently, retry with fresh state", err)
	case domainerrors.ErrNotFound:
		return domainerrors.NotFound(notFoundMessage)
	default:
		return domainerrors.InternalError(err)
	}
}
