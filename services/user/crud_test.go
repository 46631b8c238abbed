package user

import (
	"context"
	"testing"
	"time"

	"calendo/models"
	"calendo/services/scheduling"
	"calendo/testfixtures"
	"calendo/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc   *DefaultUserService
	repo  *testfixtures.MemoryUserRepo
	cache *testfixtures.MemoryCache
}

func newFixture(users ...models.User) fixture {
	repo := testfixtures.NewMemoryUserRepo(users...)
	cache := testfixtures.NewMemoryCache()
	dir := scheduling.NewWorkerDirectory(repo, cache, time.Minute, zap.NewNop())
	return fixture{svc: &DefaultUserService{Repo: repo, Workers: dir}, repo: repo, cache: cache}
}

func TestCreateWorkerRefreshesDirectory(t *testing.T) {
	fx := newFixture(testfixtures.Worker("w1", "Ann"))
	ctx := context.Background()

	workers, err := fx.svc.GetWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, workers, 1)
	require.True(t, fx.cache.Has(utils.WorkerCacheKey))

	created, err := fx.svc.CreateUser(ctx, models.User{
		FirstName: "Ben",
		LastName:  "Okello",
		Email:     "  Ben@Example.COM ",
		Role:      models.RoleWorker,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ben@example.com", created.Email)
	assert.True(t, created.Active)
	assert.False(t, fx.cache.Has(utils.WorkerCacheKey))

	workers, err = fx.svc.GetWorkers(ctx)
	require.NoError(t, err)
	assert.Len(t, workers, 2)
}

func TestCreateUserDefaultsRole(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.svc.GetWorkers(ctx)
	require.NoError(t, err)

	created, err := fx.svc.CreateUser(ctx, models.User{FirstName: "Cleo", LastName: "N", Email: "cleo@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, created.Role)
	// plain users never enter the worker directory
	assert.True(t, fx.cache.Has(utils.WorkerCacheKey))

	_, err = fx.svc.CreateUser(ctx, models.User{FirstName: "X", LastName: "Y", Email: "x@example.com", Role: "boss"})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "role", verr.Field)
}

func TestDeactivatingWorkerDropsThemFromDirectory(t *testing.T) {
	fx := newFixture(testfixtures.Worker("w1", "Ann"), testfixtures.Worker("w2", "Ben"))
	ctx := context.Background()

	workers, err := fx.svc.GetWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, workers, 2)

	inactive := false
	updated, err := fx.svc.UpdateUser(ctx, "w2", models.UserUpdate{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	workers, err = fx.svc.GetWorkers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Worker{{ID: "w1", Name: "Ann"}}, workers)
}

func TestUpdateUserValidation(t *testing.T) {
	fx := newFixture(testfixtures.Worker("w1", "Ann"))
	ctx := context.Background()

	var verr ValidationError
	_, err := fx.svc.UpdateUser(ctx, "w1", models.UserUpdate{})
	require.ErrorAs(t, err, &verr)

	bad := models.Role("owner")
	_, err = fx.svc.UpdateUser(ctx, "w1", models.UserUpdate{Role: &bad})
	require.ErrorAs(t, err, &verr)

	name := "Zed"
	_, err = fx.svc.UpdateUser(ctx, "ghost", models.UserUpdate{FirstName: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)

	email := " ANN@example.com"
	updated, err := fx.svc.UpdateUser(ctx, "w1", models.UserUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", updated.Email)
}

func TestGetAndDeleteUser(t *testing.T) {
	fx := newFixture(testfixtures.Worker("w1", "Ann"))
	ctx := context.Background()

	u, err := fx.svc.GetUserByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.FirstName)

	require.NoError(t, fx.svc.DeleteUser(ctx, "w1"))
	_, err = fx.svc.GetUserByID(ctx, "w1")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, fx.svc.DeleteUser(ctx, "w1"), ErrUserNotFound)

	all, err := fx.svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
