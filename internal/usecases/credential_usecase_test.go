package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/pkg/crypto"
	"devhub.backend/pkg/logger"
)

const testSecretLimit = 5

func newCredentialFixture(t *testing.T) (*CredentialUsecase, *mockApplicationRepo) {
	t.Helper()
	logger.Init("development")

	appRepo := new(mockApplicationRepo)
	uow := new(mockUnitOfWork)
	uow.On("Do", mock.Anything).Return(nil).Maybe()
	hasher := crypto.NewHasher(bcrypt.MinCost, 2)
	return NewCredentialUsecase(appRepo, uow, hasher, testSecretLimit), appRepo
}

func appWithSecrets(t *testing.T, plaintexts ...string) *entities.Application {
	t.Helper()
	hasher := crypto.NewHasher(bcrypt.MinCost, 2)

	app := testingApp("Secret App")
	app.Credentials.ClientID = "client-1"
	for i, p := range plaintexts {
		hash, err := hasher.Hash(context.Background(), p)
		require.NoError(t, err)
		app.Credentials.ClientSecrets = append(app.Credentials.ClientSecrets, entities.ClientSecret{
			ID:         uuid.New(),
			SecretHint: crypto.SecretHint(p),
			SecretHash: hash,
			CreatedAt:  time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
	}
	return app
}

func TestAddClientSecret_ReturnsPlaintextOnce(t *testing.T) {
	uc, appRepo := newCredentialFixture(t)

	app := appWithSecrets(t, "first-secret")
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
	appRepo.On("AddClientSecret", mock.Anything, app.ID, int64(1), mock.MatchedBy(func(s *entities.ClientSecret) bool {
		return s.SecretHash != "" && len(s.SecretHint) == 4
	})).Return(nil)

	resp, err := uc.AddClientSecret(context.Background(), app.ID, "admin@example.com")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Secret)
	for _, stored := range resp.Credentials.ClientSecrets {
		assert.NotEqual(t, resp.Secret, stored.SecretHash)
	}
}

func TestAddClientSecret_LimitReached(t *testing.T) {
	uc, appRepo := newCredentialFixture(t)

	app := appWithSecrets(t, "s1", "s2", "s3", "s4", "s5")
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

	_, err := uc.AddClientSecret(context.Background(), app.ID, "admin@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrClientSecretsLimit))
	appRepo.AssertNotCalled(t, "AddClientSecret", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteClientSecret_Success(t *testing.T) {
	uc, appRepo := newCredentialFixture(t)

	app := appWithSecrets(t, "keep-me", "drop-me")
	target := app.Credentials.ClientSecrets[1].ID
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
	appRepo.On("DeleteClientSecret", mock.Anything, app.ID, int64(1), target).Return(nil)

	_, err := uc.DeleteClientSecret(context.Background(), app.ID, target, "admin@example.com")

	require.NoError(t, err)
	appRepo.AssertExpectations(t)
}

func TestDeleteClientSecret_LastSecretRefused(t *testing.T) {
	uc, appRepo := newCredentialFixture(t)

	app := appWithSecrets(t, "only-one")
	target := app.Credentials.ClientSecrets[0].ID
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

	_, err := uc.DeleteClientSecret(context.Background(), app.ID, target, "admin@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrLastClientSecret))
	appRepo.AssertNotCalled(t, "DeleteClientSecret", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteClientSecret_UnknownSecret(t *testing.T) {
	uc, appRepo := newCredentialFixture(t)

	app := appWithSecrets(t, "s1", "s2")
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

	_, err := uc.DeleteClientSecret(context.Background(), app.ID, uuid.New(), "admin@example.com")

	require.Error(t, err)
	var appErr *domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Status)
}

// Two removals racing on the same two-secret snapshot must not both land,
// otherwise the application would be left with no secret at all. The
// write that loses the version condition is answered with a conflict.
func TestDeleteClientSecret_ConcurrentRemovalConflicts(t *testing.T) {
	uc, appRepo := newCredentialFixture(t)

	app := appWithSecrets(t, "s1", "s2")
	first := app.Credentials.ClientSecrets[0].ID
	second := app.Credentials.ClientSecrets[1].ID
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

	appRepo.On("DeleteClientSecret", mock.Anything, app.ID, int64(1), first).Return(nil)
	appRepo.On("DeleteClientSecret", mock.Anything, app.ID, int64(1), second).
		Return(domainerrors.ErrConcurrentModification)

	_, firstErr := uc.DeleteClientSecret(context.Background(), app.ID, first, "admin@example.com")
	require.NoError(t, firstErr)

	_, secondErr := uc.DeleteClientSecret(context.Background(), app.ID, second, "admin@example.com")
	require.Error(t, secondErr)
	assert.True(t, errors.Is(secondErr, domainerrors.ErrConcurrentModification))

	var appErr *domainerrors.AppError
	require.True(t, errors.As(secondErr, &appErr))
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "CONCURRENT_MODIFICATION", appErr.Code)
}

// Two issuers racing on the same snapshot cannot overshoot the limit; the
// second write carries a stale version and is refused.
func TestAddClientSecret_ConcurrentIssueConflicts(t *testing.T) {
	uc, appRepo := newCredentialFixture(t)

	app := appWithSecrets(t, "s1", "s2", "s3", "s4")
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
	appRepo.On("AddClientSecret", mock.Anything, app.ID, int64(1), mock.Anything).
		Return(domainerrors.ErrConcurrentModification)

	_, err := uc.AddClientSecret(context.Background(), app.ID, "admin@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrConcurrentModification))
}

func TestValidateCredentials_RoundTrip(t *testing.T) {
	uc, appRepo := newCredentialFixture(t)

	app := appWithSecrets(t, "old-secret", "current-secret")
	appRepo.On("GetByClientID", mock.Anything, "client-1").Return(app, nil)

	result, err := uc.ValidateCredentials(context.Background(), "client-1", "current-secret")

	require.NoError(t, err)
	assert.Equal(t, app.ID, result.ID)
}

func TestValidateCredentials_FailureIsUniform(t *testing.T) {
	uc, appRepo := newCredentialFixture(t)

	app := appWithSecrets(t, "real-secret")
	appRepo.On("GetByClientID", mock.Anything, "client-1").Return(app, nil)
	appRepo.On("GetByClientID", mock.Anything, "no-such-client").Return(nil, domainerrors.ErrNotFound)

	_, errWrongSecret := uc.ValidateCredentials(context.Background(), "client-1", "wrong-secret")
	_, errNoClient := uc.ValidateCredentials(context.Background(), "no-such-client", "real-secret")

	require.Error(t, errWrongSecret)
	require.Error(t, errNoClient)
	assert.Equal(t, errWrongSecret.Error(), errNoClient.Error())

	var appErr *domainerrors.AppError
	require.True(t, errors.As(errWrongSecret, &appErr))
	assert.Equal(t, 401, appErr.Status)
}
