package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"devhub.backend/internal/domain/entities"
)

type mockApplicationRepo struct {
	mock.Mock
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *entities.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Application), args.Error(1)
}

func (m *mockApplicationRepo) GetByClientID(ctx context.Context, clientID string) (*entities.Application, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Application), args.Error(1)
}

func (m *mockApplicationRepo) GetByVerificationCode(ctx context.Context, code string) (*entities.Application, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Application), args.Error(1)
}

func (m *mockApplicationRepo) ExistsPromotedWithName(ctx context.Context, normalizedName string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, normalizedName, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockApplicationRepo) UpdateState(ctx context.Context, id uuid.UUID, expected entities.State, next entities.ApplicationState) error {
	args := m.Called(ctx, id, expected, next)
	return args.Error(0)
}

func (m *mockApplicationRepo) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	args := m.Called(ctx, id, blocked)
	return args.Error(0)
}

func (m *mockApplicationRepo) UpdateRateLimitTier(ctx context.Context, id uuid.UUID, tier entities.RateLimitTier) error {
	args := m.Called(ctx, id, tier)
	return args.Error(0)
}

func (m *mockApplicationRepo) UpdateIPAllowlist(ctx context.Context, id uuid.UUID, allowlist []string) error {
	args := m.Called(ctx, id, allowlist)
	return args.Error(0)
}

func (m *mockApplicationRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *mockApplicationRepo) ReplaceCollaborators(ctx context.Context, id uuid.UUID, expectedVersion int64, collaborators []entities.Collaborator) error {
	args := m.Called(ctx, id, expectedVersion, collaborators)
	return args.Error(0)
}

func (m *mockApplicationRepo) AddClientSecret(ctx context.Context, id uuid.UUID, expectedVersion int64, secret *entities.ClientSecret) error {
	args := m.Called(ctx, id, expectedVersion, secret)
	return args.Error(0)
}

func (m *mockApplicationRepo) DeleteClientSecret(ctx context.Context, id uuid.UUID, expectedVersion int64, secretID uuid.UUID) error {
	args := m.Called(ctx, id, expectedVersion, secretID)
	return args.Error(0)
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockApplicationRepo) List(ctx context.Context, limit, offset int) ([]*entities.Application, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Application), args.Int(1), args.Error(2)
}

func (m *mockApplicationRepo) FindWithExpiredVerification(ctx context.Context, validity time.Duration, now time.Time) ([]*entities.Application, error) {
	args := m.Called(ctx, validity, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Application), args.Error(1)
}

func (m *mockApplicationRepo) AllTiersAndKeys(ctx context.Context) ([]entities.GatewayAssignment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.GatewayAssignment), args.Error(1)
}

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Create(ctx context.Context, sub *entities.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) Delete(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) error {
	args := m.Called(ctx, appID, api)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) Exists(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) (bool, error) {
	args := m.Called(ctx, appID, api)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubscriptionRepo) ListByApplication(ctx context.Context, appID uuid.UUID) ([]*entities.Subscription, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) List(ctx context.Context, limit, offset int) ([]*entities.Subscription, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Subscription), args.Int(1), args.Error(2)
}

func (m *mockSubscriptionRepo) DeleteByApplication(ctx context.Context, appID uuid.UUID) error {
	args := m.Called(ctx, appID)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) SearchCollaborators(ctx context.Context, api entities.ApiIdentifier, partialEmail string) ([]entities.CollaboratorSearchResult, error) {
	args := m.Called(ctx, api, partialEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.CollaboratorSearchResult), args.Error(1)
}

type mockStateHistoryRepo struct {
	mock.Mock
}

func (m *mockStateHistoryRepo) Append(ctx context.Context, transition *entities.StateTransition) error {
	args := m.Called(ctx, transition)
	return args.Error(0)
}

func (m *mockStateHistoryRepo) ListByApplication(ctx context.Context, appID uuid.UUID) ([]*entities.StateTransition, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.StateTransition), args.Error(1)
}

func (m *mockStateHistoryRepo) DeleteByApplication(ctx context.Context, appID uuid.UUID) error {
	args := m.Called(ctx, appID)
	return args.Error(0)
}

// mockUnitOfWork runs the function directly; the transaction boundary is
// exercised by the repository integration tests.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type mockEmailClient struct {
	mock.Mock
}

func (m *mockEmailClient) SendVerification(ctx context.Context, to, code, appName string) error {
	args := m.Called(ctx, to, code, appName)
	return args.Error(0)
}

func (m *mockEmailClient) SendCollaboratorAdded(ctx context.Context, to, appName string, admins []string) error {
	args := m.Called(ctx, to, appName, admins)
	return args.Error(0)
}

func (m *mockEmailClient) SendCollaboratorRemoved(ctx context.Context, to, appName string, admins []string) error {
	args := m.Called(ctx, to, appName, admins)
	return args.Error(0)
}

type mockEventsClient struct {
	mock.Mock
}

func (m *mockEventsClient) SendSubscribed(ctx context.Context, app *entities.Application, api entities.ApiIdentifier) bool {
	args := m.Called(ctx, app, api)
	return args.Bool(0)
}

func (m *mockEventsClient) SendUnsubscribed(ctx context.Context, app *entities.Application, api entities.ApiIdentifier) bool {
	args := m.Called(ctx, app, api)
	return args.Bool(0)
}

type mockGatewayClient struct {
	mock.Mock
}

func (m *mockGatewayClient) CreateOrUpdate(ctx context.Context, appName, serverToken string, tier entities.RateLimitTier) error {
	args := m.Called(ctx, appName, serverToken, tier)
	return args.Error(0)
}

func (m *mockGatewayClient) Delete(ctx context.Context, appName string) error {
	args := m.Called(ctx, appName)
	return args.Error(0)
}
