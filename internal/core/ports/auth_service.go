package ports

import (
	"context"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AccessToken is the bearer credential returned by Login.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresIn int64 // seconds
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*AccessToken, error)
	// Authenticate resolves a bearer token into the principal behind it.
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
	Me(ctx context.Context, p domain.Principal) (*domain.User, error)
}
