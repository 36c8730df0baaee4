package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"auth-service/internal/domain/user"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestUserRepoPG_CreateAndGetByEmail(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &user.User{
		Name:     "Al",
		Email:    "a@b.com",
		Password: "$2a$hash",
		Picture:  "pic.png",
		Status:   "hello",
	})
	require.NoError(t, err)
	assert.Len(t, created.ID, 36)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Al", found.Name)
	assert.Equal(t, "$2a$hash", found.Password)
	assert.Equal(t, "pic.png", found.Picture)
	assert.Equal(t, "hello", found.Status)
}

func TestUserRepoPG_GetByEmail_NotFound(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	found, err := repo.GetByEmail(context.Background(), "nobody@b.com")

	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserRepoPG_Create_DuplicateEmail(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &user.User{Name: "Al", Email: "a@b.com", Password: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &user.User{Name: "Bo", Email: "a@b.com", Password: "h"})
	assert.Error(t, err)
}

func TestUserRepoPG_Create_Nil(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	_, err := repo.Create(context.Background(), nil)

	assert.EqualError(t, err, "user cannot be nil")
}

func TestUserRepoPG_GetByEmail_DBError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("connection refused"))

	repo := NewUserRepoPG(db, zaptest.NewLogger(t))
	found, err := repo.GetByEmail(context.Background(), "a@b.com")

	assert.Nil(t, found)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get user by email")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "pg error", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, want: true},
		{name: "wrapped pg error", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation}), want: true},
		{name: "other pg error", err: &pgconn.PgError{Code: pgerrcode.NotNullViolation}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestUserRepoPG_Create_UniqueViolation(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "idx_users_email"})
	mock.ExpectRollback()

	repo := NewUserRepoPG(db, zaptest.NewLogger(t))
	created, err := repo.Create(context.Background(), &user.User{Name: "Al", Email: "a@b.com", Password: "h"})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
