package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "auth-service/internal/domain/user"
	apperrors "auth-service/pkg/errors"
	"auth-service/pkg/logger"
)

// Client-facing messages.
const (
	MsgFillAllFields      = "Please fill all fields"
	MsgNameLength         = "Please make sure your name is between 2 & 16 characters"
	MsgStatusLength       = "Please make sure your status is less than 64 characters"
	MsgInvalidEmail       = "Please enter a valid email address"
	MsgUserExists         = "User already exists. Please try again with a different email address"
	MsgPasswordLength     = "Please make sure your password is between 6 and 128 characters"
	MsgInvalidCredentials = "Invalid credentials"
)

// ErrInvalidCredentials is the single error returned for every sign-in failure.
var ErrInvalidCredentials = apperrors.NotFound(MsgInvalidCredentials)

// Usecase implements registration and sign-in.
type Usecase struct {
	repo     Repository
	hasher   PasswordHasher
	defaults Defaults
	log      *zap.Logger
	validate *validator.Validate

	dummyOnce sync.Once
	dummyHash string
}

var _ Service = (*Usecase)(nil)

// New creates the auth usecase. defaults fill picture and status when a
// registration leaves them empty.
func New(r Repository, h PasswordHasher, defaults Defaults, log *zap.Logger) *Usecase {
	return &Usecase{
		repo:     r,
		hasher:   h,
		defaults: defaults,
		log:      log,
		validate: validator.New(),
	}
}

// Register validates the candidate record and persists it with a hashed password.
// Checks run in a fixed order and stop at the first failure; the email
// uniqueness check runs before the password length check.
func (uc *Usecase) Register(ctx context.Context, in RegisterRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Debug("registering user")

	if in.Name == "" || in.Email == "" || in.Password == "" {
		log.Warn("register validation failed", zap.String("reason", "missing fields"))
		return nil, apperrors.BadRequest(MsgFillAllFields)
	}

	if err := uc.validate.Var(in.Name, "min=2,max=16"); err != nil {
		log.Warn("register validation failed", zap.String("reason", "name length"))
		return nil, apperrors.BadRequest(MsgNameLength)
	}

	if in.Status != "" {
		if err := uc.validate.Var(in.Status, "max=64"); err != nil {
			log.Warn("register validation failed", zap.String("reason", "status length"))
			return nil, apperrors.BadRequest(MsgStatusLength)
		}
	}

	if err := uc.validate.Var(in.Email, "email"); err != nil {
		log.Warn("register validation failed", zap.String("reason", "email syntax"))
		return nil, apperrors.BadRequest(MsgInvalidEmail)
	}

	email := normalizeEmail(in.Email)

	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		log.Error("failed to check existing email", zap.Error(err))
		return nil, apperrors.Internal("failed to validate email uniqueness", err)
	}
	if existing != nil {
		log.Warn("email already exists")
		return nil, apperrors.Conflict(MsgUserExists)
	}

	if err := uc.validate.Var(in.Password, "min=6,max=128"); err != nil {
		log.Warn("register validation failed", zap.String("reason", "password length"))
		return nil, apperrors.BadRequest(MsgPasswordLength)
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, apperrors.Internal("failed to hash password", err)
	}

	picture := in.Picture
	if picture == "" {
		picture = uc.defaults.Picture
	}
	status := in.Status
	if status == "" {
		status = uc.defaults.Status
	}

	created, err := uc.repo.Create(ctx, &domain.User{
		Name:     in.Name,
		Email:    email,
		Password: hash,
		Picture:  picture,
		Status:   status,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			log.Warn("email taken by concurrent registration")
			return nil, apperrors.Conflict(MsgUserExists)
		}
		log.Error("failed to create user", zap.Error(err))
		return nil, apperrors.Internal("failed to create user", err)
	}

	log.Info("user registered", zap.String("id", created.ID))
	return created, nil
}

// SignIn returns the user matching email and password. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (uc *Usecase) SignIn(ctx context.Context, in SignInRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)
	email := normalizeEmail(in.Email)

	u, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		log.Error("failed to look up user", zap.Error(err))
		return nil, apperrors.Internal("failed to look up user", err)
	}

	if u == nil {
		// Same hashing cost as a real comparison.
		_, _ = uc.hasher.Compare(uc.placeholderHash(), in.Password)
		log.Info("sign-in rejected", zap.String("reason", "unknown email"))
		return nil, ErrInvalidCredentials
	}

	ok, err := uc.hasher.Compare(u.Password, in.Password)
	if err != nil {
		log.Error("stored password hash is unusable", zap.String("id", u.ID), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Info("sign-in rejected", zap.String("reason", "password mismatch"), zap.String("id", u.ID))
		return nil, ErrInvalidCredentials
	}

	log.Info("user signed in", zap.String("id", u.ID))
	return u, nil
}

func (uc *Usecase) placeholderHash() string {
	uc.dummyOnce.Do(func() {
		h, err := uc.hasher.Hash("placeholder-password")
		if err != nil {
			uc.log.Warn("failed to build placeholder hash", zap.Error(err))
			return
		}
		uc.dummyHash = h
	})
	return uc.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
