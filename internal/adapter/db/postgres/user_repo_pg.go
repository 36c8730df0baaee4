package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"auth-service/internal/domain/user"
	"auth-service/pkg/logger"
)

// UserRepoPG implements the auth user repository using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:16;not null"`
	Email     string `gorm:"size:320;not null;uniqueIndex"`
	Password  string `gorm:"not null"`
	Picture   string
	Status    string `gorm:"size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// Create inserts a new user and returns the stored record.
// A unique index violation on email is reported as user.ErrEmailTaken.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := UserSchema{
		ID:       uuid.NewString(),
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Picture:  u.Picture,
		Status:   u.Status,
	}

	log := logger.WithContext(ctx, r.log)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			log.Warn("email already taken on insert")
			return nil, user.ErrEmailTaken
		}
		log.Error("failed to create user in db", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user created in db", zap.String("id", model.ID))
	return toDomain(&model), nil
}

// GetByEmail retrieves a user by email. It returns nil, nil when no user matches.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithContext(ctx, r.log).Error("failed to get user by email from db", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return toDomain(&model), nil
}

func toDomain(m *UserSchema) *user.User {
	return &user.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Password:  m.Password,
		Picture:   m.Picture,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// isUniqueViolation recognises duplicate keys whether or not GORM's error
// translation is enabled on the dialector.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
