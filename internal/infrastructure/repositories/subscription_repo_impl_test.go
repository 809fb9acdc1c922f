package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
)

func TestSubscriptionRepository_CreateExistsDelete(t *testing.T) {
	db := newTestDB(t)
	createSubscriptionTable(t, db)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	appID := uuid.New()
	api := entities.ApiIdentifier{Context: "payments", Version: "1.0"}

	exists, err := repo.Exists(ctx, appID, api)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, &entities.Subscription{
		ApplicationID: appID,
		Api:           api,
		CreatedAt:     time.Now().UTC(),
	}))

	exists, err = repo.Exists(ctx, appID, api)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, appID, api))
	exists, err = repo.Exists(ctx, appID, api)
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting an absent relation is a no-op
	require.NoError(t, repo.Delete(ctx, appID, api))
}

// A duplicate insert trips the composite primary key and must surface as
// the domain sentinel, not a raw driver error.
func TestSubscriptionRepository_DuplicateCreate(t *testing.T) {
	db := newTestDB(t)
	createSubscriptionTable(t, db)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	sub := &entities.Subscription{
		ApplicationID: uuid.New(),
		Api:           entities.ApiIdentifier{Context: "payments", Version: "1.0"},
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, sub))

	err := repo.Create(ctx, sub)
	assert.ErrorIs(t, err, domainerrors.ErrSubscriptionAlreadyExists)
}

func TestSubscriptionRepository_ListByApplication(t *testing.T) {
	db := newTestDB(t)
	createSubscriptionTable(t, db)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	appID := uuid.New()
	for _, api := range []entities.ApiIdentifier{
		{Context: "payments", Version: "2.0"},
		{Context: "accounts", Version: "1.0"},
	} {
		require.NoError(t, repo.Create(ctx, &entities.Subscription{ApplicationID: appID, Api: api, CreatedAt: time.Now().UTC()}))
	}
	require.NoError(t, repo.Create(ctx, &entities.Subscription{
		ApplicationID: uuid.New(),
		Api:           entities.ApiIdentifier{Context: "payments", Version: "2.0"},
		CreatedAt:     time.Now().UTC(),
	}))

	subs, err := repo.ListByApplication(ctx, appID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "accounts", subs[0].Api.Context)

	all, total, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	require.NoError(t, repo.DeleteByApplication(ctx, appID))
	subs, err = repo.ListByApplication(ctx, appID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSubscriptionRepository_SearchCollaborators(t *testing.T) {
	db := newTestDB(t)
	createApplicationTables(t, db)
	createSubscriptionTable(t, db)
	appRepo := NewApplicationRepository(db)
	subRepo := NewSubscriptionRepository(db)
	ctx := context.Background()

	app := testApplication("Search App")
	app.Collaborators = []entities.Collaborator{
		{Email: "Admin@Corp.example", Role: entities.RoleAdministrator},
		{Email: "dev@other.example", Role: entities.RoleDeveloper},
	}
	require.NoError(t, appRepo.Create(ctx, app))

	api := entities.ApiIdentifier{Context: "payments", Version: "1.0"}
	require.NoError(t, subRepo.Create(ctx, &entities.Subscription{ApplicationID: app.ID, Api: api, CreatedAt: time.Now().UTC()}))

	results, err := subRepo.SearchCollaborators(ctx, api, "CORP")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Admin@Corp.example", results[0].Email)
	assert.Equal(t, "Search App", results[0].ApplicationName)

	// unsubscribed API yields nothing
	results, err = subRepo.SearchCollaborators(ctx, entities.ApiIdentifier{Context: "accounts", Version: "1.0"}, "corp")
	require.NoError(t, err)
	assert.Empty(t, results)
}
