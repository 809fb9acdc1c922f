package usecases

import (
	"context"
	"errors"
	"testing"

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

func newApplicationFixture(t *testing.T) (*ApplicationUsecase, *mockApplicationRepo, *mockSubscriptionRepo, *mockStateHistoryRepo, *mockGatewayClient) {
	t.Helper()
	logger.Init("development")

	appRepo := new(mockApplicationRepo)
	subRepo := new(mockSubscriptionRepo)
	historyRepo := new(mockStateHistoryRepo)
	uow := new(mockUnitOfWork)
	gateway := new(mockGatewayClient)
	uow.On("Do", mock.Anything).Return(nil)
	hasher := crypto.NewHasher(bcrypt.MinCost, 2)

	uc := NewApplicationUsecase(appRepo, subRepo, historyRepo, uow, gateway, hasher)
	return uc, appRepo, subRepo, historyRepo, gateway
}

func TestCreateApplication_StartsInTestingWithCredentials(t *testing.T) {
	uc, appRepo, _, _, gateway := newApplicationFixture(t)

	appRepo.On("Create", mock.Anything, mock.MatchedBy(func(app *entities.Application) bool {
		return app.State.State == entities.StateTesting &&
			app.RateLimitTier == entities.TierBronze &&
			app.Credentials.ClientID != "" &&
			app.Credentials.ServerToken != "" &&
			len(app.Credentials.ClientSecrets) == 1
	})).Return(nil)
	gateway.On("CreateOrUpdate", mock.Anything, "New App", mock.Anything, entities.TierBronze).Return(nil)

	app, secret, err := uc.CreateApplication(context.Background(), CreateApplicationInput{
		Name:       "New App",
		AccessType: entities.AccessTypeStandard,
		OwnerEmail: "owner@example.com",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Equal(t, entities.StateTesting, app.State.State)
	require.Len(t, app.Collaborators, 1)
	assert.Equal(t, entities.RoleAdministrator, app.Collaborators[0].Role)
	assert.NotEqual(t, secret, app.Credentials.ClientSecrets[0].SecretHash)
	gateway.AssertExpectations(t)
}

func TestCreateApplication_GatewayFailureDoesNotFail(t *testing.T) {
	uc, appRepo, _, _, gateway := newApplicationFixture(t)

	appRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	gateway.On("CreateOrUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("gateway unreachable"))

	_, secret, err := uc.CreateApplication(context.Background(), CreateApplicationInput{
		Name:       "New App",
		AccessType: entities.AccessTypeStandard,
		OwnerEmail: "owner@example.com",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, secret)
}

func TestCreateApplication_Validation(t *testing.T) {
	uc, appRepo, _, _, _ := newApplicationFixture(t)

	cases := []CreateApplicationInput{
		{Name: "", AccessType: entities.AccessTypeStandard, OwnerEmail: "o@example.com"},
		{Name: "App", AccessType: entities.AccessTypeStandard, OwnerEmail: ""},
		{Name: "App", AccessType: "SUPERUSER", OwnerEmail: "o@example.com"},
	}
	for _, input := range cases {
		_, _, err := uc.CreateApplication(context.Background(), input)
		var appErr *domainerrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, 400, appErr.Status)
	}
	appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteApplication_CascadesAndCleansGateway(t *testing.T) {
	uc, appRepo, subRepo, historyRepo, gateway := newApplicationFixture(t)

	app := testingApp("Doomed App")
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
	subRepo.On("DeleteByApplication", mock.Anything, app.ID).Return(nil)
	historyRepo.On("DeleteByApplication", mock.Anything, app.ID).Return(nil)
	appRepo.On("Delete", mock.Anything, app.ID).Return(nil)
	gateway.On("Delete", mock.Anything, "Doomed App").Return(nil)

	err := uc.DeleteApplication(context.Background(), app.ID)

	require.NoError(t, err)
	subRepo.AssertExpectations(t)
	historyRepo.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestDeleteApplication_GatewayFailureDoesNotFail(t *testing.T) {
	uc, appRepo, subRepo, historyRepo, gateway := newApplicationFixture(t)

	app := testingApp("Doomed App")
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
	subRepo.On("DeleteByApplication", mock.Anything, app.ID).Return(nil)
	historyRepo.On("DeleteByApplication", mock.Anything, app.ID).Return(nil)
	appRepo.On("Delete", mock.Anything, app.ID).Return(nil)
	gateway.On("Delete", mock.Anything, "Doomed App").Return(errors.New("gateway unreachable"))

	err := uc.DeleteApplication(context.Background(), app.ID)

	require.NoError(t, err)
}

func TestUpdateIPAllowlist_ValidatesEntries(t *testing.T) {
	uc, appRepo, _, _, _ := newApplicationFixture(t)

	app := testingApp("Net App")
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
	appRepo.On("UpdateIPAllowlist", mock.Anything, app.ID, []string{"10.0.0.1", "192.168.0.0/24"}).Return(nil)

	result, err := uc.UpdateIPAllowlist(context.Background(), app.ID, []string{" 10.0.0.1 ", "192.168.0.0/24", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/24"}, result.IPAllowlist)

	_, err = uc.UpdateIPAllowlist(context.Background(), app.ID, []string{"not-an-ip"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidIpAllowlist))

	_, err = uc.UpdateIPAllowlist(context.Background(), app.ID, []string{"10.0.0.0/99"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidIpAllowlist))
}

func TestUpdateIPAllowlist_EmptyClears(t *testing.T) {
	uc, appRepo, _, _, _ := newApplicationFixture(t)

	app := testingApp("Net App")
	app.IPAllowlist = []string{"10.0.0.1"}
	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
	appRepo.On("UpdateIPAllowlist", mock.Anything, app.ID, []string{}).Return(nil)

	result, err := uc.UpdateIPAllowlist(context.Background(), app.ID, nil)

	require.NoError(t, err)
	assert.Empty(t, result.IPAllowlist)
}

func TestGetApplication_NotFound(t *testing.T) {
	uc, appRepo, _, _, _ := newApplicationFixture(t)

	id := uuid.New()
	appRepo.On("GetByID", mock.Anything, id).Return(nil, domainerrors.ErrNotFound)

	_, err := uc.GetApplication(context.Background(), id)

	var appErr *domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Status)
}
