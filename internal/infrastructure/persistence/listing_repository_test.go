package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/domain/shared"
)

// newMockListingRepository creates a GormListingRepository over a mocked postgres connection
func newMockListingRepository(t *testing.T) (*GormListingRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormListingRepository(gormDB), mock, mockDB
}

func TestGormListingRepository_FindAll(t *testing.T) {
	repo, mock, mockDB := newMockListingRepository(t)
	defer mockDB.Close()

	id := uuid.NewString()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "district", "payment_methods", "price", "created_at"}).
		AddRow(id, "ЖК Север", "Калининский", `["Ипотека","Рассрочка"]`, "1500000", created)

	mock.ExpectQuery(`SELECT \* FROM "cards" ORDER BY created_at ASC`).
		WillReturnRows(rows)

	got, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, listing.District("Калининский"), got[0].District)
	assert.Equal(t, listing.PaymentSet{"Ипотека", "Рассрочка"}, got[0].PaymentMethods)
	assert.True(t, decimal.NewFromInt(1500000).Equal(got[0].Price))
	require.NotNil(t, got[0].CreatedAt)
	assert.True(t, created.Equal(*got[0].CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormListingRepository_FindByID(t *testing.T) {
	t.Run("finds existing listing", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepository(t)
		defer mockDB.Close()

		id := uuid.NewString()
		rows := sqlmock.NewRows([]string{"id", "name", "comment"}).
			AddRow(id, "ЖК Юг", "угловая")

		mock.ExpectQuery(`SELECT \* FROM "cards" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		got, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "ЖК Юг", got.Name)
		assert.Equal(t, "угловая", got.Comment)
		assert.Nil(t, got.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepository(t)
		defer mockDB.Close()

		id := uuid.NewString()
		mock.ExpectQuery(`SELECT \* FROM "cards" WHERE id = \$1`).
			WithArgs(id, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects malformed id without querying", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepository(t)
		defer mockDB.Close()

		_, err := repo.FindByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps driver errors", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepository(t)
		defer mockDB.Close()

		id := uuid.NewString()
		mock.ExpectQuery(`SELECT \* FROM "cards"`).
			WillReturnError(sql.ErrConnDone)

		_, err := repo.FindByID(context.Background(), id)
		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormListingRepository_UpdateComment(t *testing.T) {
	t.Run("updates one row", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepository(t)
		defer mockDB.Close()

		id := uuid.NewString()
		mock.ExpectExec(`UPDATE "cards" SET "comment"=\$1,"updated_at"=\$2 WHERE id = \$3`).
			WithArgs("звонить после 18", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateComment(context.Background(), id, "звонить после 18")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows affected is not found", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepository(t)
		defer mockDB.Close()

		id := uuid.NewString()
		mock.ExpectExec(`UPDATE "cards" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateComment(context.Background(), id, "x")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormListingRepository_Delete(t *testing.T) {
	t.Run("deletes one row", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepository(t)
		defer mockDB.Close()

		id := uuid.NewString()
		mock.ExpectExec(`DELETE FROM "cards" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo, mock, mockDB := newMockListingRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "cards"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormListingRepository_Ping(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	mock.ExpectPing()
	require.NoError(t, NewGormListingRepository(gormDB).Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
