package auth

import (
	"context"

	domain "auth-service/internal/domain/user"
)

// Service defines the authentication operations exposed to transports.
type Service interface {
	Register(ctx context.Context, in RegisterRequest) (*domain.User, error)
	SignIn(ctx context.Context, in SignInRequest) (*domain.User, error)
}

// Repository defines the user storage the auth usecase depends on.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error) // nil, nil when absent
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}
