package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallevents/gatekeeper/internal/clock"
	"github.com/smallevents/gatekeeper/internal/user/domain"
	"github.com/smallevents/gatekeeper/internal/user/repository"
	"github.com/smallevents/gatekeeper/internal/user/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// racedUserRepo hides the row from the first email lookup, modelling a
// concurrent submission committing the user between find and insert.
type racedUserRepo struct {
	domain.Repository
	misses int
}

func (r *racedUserRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.Repository.FindByEmail(ctx, db, email)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func newService(t *testing.T, db *gorm.DB, repo domain.Repository) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)),
		Repo:  repo,
	})
}

func TestEnsureByEmailNormalizes(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db, repository.Provide())

	got, err := svc.EnsureByEmail(context.Background(), "  Jordan@Example.ORG ")
	require.NoError(t, err)
	assert.Equal(t, "jordan@example.org", got.Email)

	_, err = svc.EnsureByEmail(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestEnsureByEmailLosesInsertRace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	svc := newService(t, db, repository.Provide())
	first, err := svc.EnsureByEmail(ctx, "jordan@example.org")
	require.NoError(t, err)

	// The lookup misses, the unique index on email rejects the insert,
	// and the winner's row comes back instead of a duplicate account.
	raced := newService(t, db, &racedUserRepo{Repository: repository.Provide(), misses: 1})
	second, err := raced.EnsureByEmail(ctx, "jordan@example.org")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PasswordHash, second.PasswordHash)
}
