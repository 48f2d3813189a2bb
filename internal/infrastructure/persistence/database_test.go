package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cms/backend/internal/domain/content"
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
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

	return &Database{DB: gormDB}, mock, mockDB
}

func TestNewDatabaseWithLogger_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "cms.db"),
	}

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.AutoMigrate())
	require.NoError(t, db.Ping(context.Background()))

	for _, table := range []string{
		content.CollectionFriendLinks,
		content.CollectionCorporateHonors,
		content.CollectionProductPages,
		content.CollectionSolutionPages,
	} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
		assert.True(t, db.DB.Migrator().HasIndex(table, "idx_"+table+"_scope_sort_order"), table)
	}

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestDatabase_Ping(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectPing()

	assert.NoError(t, db.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("rollback on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderedRepository_UpdateOrdersSQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewFriendLinkRepository(db.DB)

	a, b := uuid.New(), uuid.New()
	scope := content.FriendLinkScope()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id,sort_order FROM "friend_links" WHERE scope = $1 ORDER BY sort_order ASC,id ASC FOR UPDATE`)).
		WithArgs("friend_links").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sort_order"}).
			AddRow(a.String(), 1).
			AddRow(b.String(), 2))
	// parked below zero first
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "friend_links" SET "sort_order"=$1 WHERE id = $2 AND scope = $3`)).
		WithArgs(-1, a, "friend_links").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "friend_links" SET "sort_order"=$1 WHERE id = $2 AND scope = $3`)).
		WithArgs(-2, b, "friend_links").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "friend_links" SET "sort_order"=$1,"updated_at"=$2 WHERE id = $3 AND scope = $4`)).
		WithArgs(2, sqlmock.AnyArg(), a, "friend_links").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "friend_links" SET "sort_order"=$1,"updated_at"=$2 WHERE id = $3 AND scope = $4`)).
		WithArgs(1, sqlmock.AnyArg(), b, "friend_links").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.UpdateOrders(context.Background(), scope, []ordering.Update{
		{ID: a, SortOrder: 2},
		{ID: b, SortOrder: 1},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []ordering.Entry{{ID: b, SortOrder: 1}, {ID: a, SortOrder: 2}}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderedRepository_UpdateOrdersRollsBackOnWriteFailure(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewFriendLinkRepository(db.DB)

	a, b := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "friend_links"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sort_order"}).
			AddRow(a.String(), 1).
			AddRow(b.String(), 2))
	mock.ExpectExec(`UPDATE "friend_links"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "friend_links"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.UpdateOrders(context.Background(), content.FriendLinkScope(), []ordering.Update{
		{ID: a, SortOrder: 2},
		{ID: b, SortOrder: 1},
	}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
