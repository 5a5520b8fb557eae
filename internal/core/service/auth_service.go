package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

const minPasswordLen = 8

// TokenConfig holds the immutable signing settings of the identity provider.
type TokenConfig struct {
	Secret    string
	AccessTTL time.Duration
	Issuer    string
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and bearer token verification.
type AuthService struct {
	users    ports.UserRepository
	limiter  ports.LoginLimiter
	observer ports.LoginObserver
	tokens   TokenConfig
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService builds the identity provider. limiter may be nil to disable
// login throttling.
func NewAuthService(
	users ports.UserRepository,
	limiter ports.LoginLimiter,
	observer ports.LoginObserver,
	tokens TokenConfig,
	logger zerolog.Logger,
) *AuthService {
	if tokens.AccessTTL <= 0 {
		tokens.AccessTTL = 30 * time.Minute
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &AuthService{
		users:    users,
		limiter:  limiter,
		observer: observer,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a client account together with its base profile.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if err := s.validate.Var(email, "required,email,max=255"); err != nil {
		return nil, domain.NewValidationError("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLen {
		return nil, domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	now := s.now().UTC()
	profile, err := domain.NewClientProfile(0, domain.ProfileDraft{
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}, now)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleClient,
		CreatedAt:    now,
	}
	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AccessToken, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		blocked, err := s.limiter.Blocked(ctx, email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		} else if blocked {
			s.observer.LoginAttempt(ports.LoginThrottled)
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.failed(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.failed(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.Warn().Err(err).Msg("failed to reset login attempts")
		}
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}
	s.observer.LoginAttempt(ports.LoginSucceeded)
	return &ports.AccessToken{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int64(s.tokens.AccessTTL / time.Second),
	}, nil
}

func (s *AuthService) failed(ctx context.Context, email string) {
	s.observer.LoginAttempt(ports.LoginFailed)
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record login failure")
	}
}

// Authenticate verifies token and resolves the account behind it. The role is
// read from the store so the token never outranks the account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.tokens.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.tokens.Issuer))
	}

	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.tokens.Secret), nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Principal{}, domain.ErrUnauthenticated
		}
		return domain.Principal{}, fmt.Errorf("authenticate: %w", err)
	}
	return domain.Principal{UserID: user.ID, Role: user.Role}, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("me: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (string, error) {
	now := s.now()
	claims := accessClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.tokens.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokens.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.tokens.Secret))
}
