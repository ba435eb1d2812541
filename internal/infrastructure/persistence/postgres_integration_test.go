//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/estate/listings/internal/domain/shared"
	"github.com/estate/listings/internal/infrastructure/migration"
	"github.com/estate/listings/migrations"
)

// newPostgresRepository starts a throwaway PostgreSQL container, applies the
// embedded migrations and returns a repository on top of it.
func newPostgresRepository(t *testing.T) *GormListingRepository {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("listings_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormListingRepository(db)
}

func TestPostgresListingRepository(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	created := time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)
	in := sampleListing("ЖК Набережный", created)
	require.NoError(t, repo.Create(ctx, in))

	got, err := repo.FindByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.PaymentMethods, got.PaymentMethods)
	assert.True(t, in.Price.Equal(got.Price))
	require.NotNil(t, got.CreatedAt)
	assert.True(t, created.Equal(*got.CreatedAt))

	require.NoError(t, repo.UpdateComment(ctx, in.ID, "вид на реку"))
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "вид на реку", all[0].Comment)

	require.NoError(t, repo.Delete(ctx, in.ID))
	_, err = repo.FindByID(ctx, in.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, repo.Ping(ctx))
}
