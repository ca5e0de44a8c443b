package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// AuthService registers users and issues session tokens.
type AuthService interface {
	// Register creates a free-tier account and returns it with a fresh token.
	Register(ctx context.Context, email, password, name string) (*domain.User, string, error)

	// Login checks credentials and returns the user with a fresh token.
	// Every failure that depends on the credentials is ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// CurrentUser loads the token subject.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Refresh issues a new token for an already authenticated subject.
	Refresh(ctx context.Context, userID uuid.UUID) (string, error)
}

type authServiceImpl struct {
	users  store.UserStore
	hasher PasswordHasher
	tokens JWTService
	now    func() time.Time
	logger *slog.Logger
}

var _ AuthService = (*authServiceImpl)(nil)

// NewAuthService creates an AuthService. It returns an error if any
// dependency is nil.
func NewAuthService(
	users store.UserStore,
	hasher PasswordHasher,
	tokens JWTService,
	logger *slog.Logger,
) (AuthService, error) {
	if users == nil {
		return nil, errors.New("users cannot be nil")
	}
	if hasher == nil {
		return nil, errors.New("hasher cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("tokens cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &authServiceImpl{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
		logger: logger.With(slog.String("component", "auth_service")),
	}, nil
}

// Register implements AuthService.
func (s *authServiceImpl) Register(
	ctx context.Context,
	email, password, name string,
) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password, name, s.now())
	if err != nil {
		return nil, "", err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration rejected: email taken")
			return nil, "", err
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login implements AuthService.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", domain.NewValidationError("email", "Email and password are required", domain.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login rejected: unknown email")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login rejected: password mismatch", slog.String("user_id", user.ID.String()))
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		log.Debug("login rejected: account inactive", slog.String("user_id", user.ID.String()))
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// CurrentUser implements AuthService.
func (s *authServiceImpl) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	return user, nil
}

// Refresh implements AuthService.
func (s *authServiceImpl) Refresh(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.tokens.GenerateToken(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
