package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/store"
)

// ProfilePatch carries a partial profile update. Nil fields are untouched.
type ProfilePatch struct {
	Name  *string
	Email *string
}

// UserService provides profile operations for the signed-in user.
type UserService interface {
	Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile changes the name and email. A new email must be unused.
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*domain.User, error)

	// ChangePassword replaces the password after checking the current one.
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error

	// Deactivate blocks future logins.
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

type userServiceImpl struct {
	tx     store.Transactor
	users  store.UserStore
	hasher auth.PasswordHasher
	now    func() time.Time
	logger *slog.Logger
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	tx store.Transactor,
	users store.UserStore,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
	opts ...Option,
) (UserService, error) {
	if tx == nil || users == nil || hasher == nil {
		return nil, &ServiceError{
			Service:   "user",
			Operation: "create_service",
			Message:   "transactor, user store and password hasher are required",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := buildOptions(opts)
	return &userServiceImpl{
		tx:     tx,
		users:  users,
		hasher: hasher,
		now:    o.now,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

// Profile implements UserService.
func (s *userServiceImpl) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("user", "profile", "failed to load user", err)
	}
	return user, nil
}

// UpdateProfile implements UserService.
func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	patch ProfilePatch,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			user.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Email != nil {
			email := domain.NormalizeEmail(*patch.Email)
			if email != user.Email {
				if err := domain.ValidateEmail(email); err != nil {
					return err
				}
				existing, err := users.GetByEmail(ctx, email)
				switch {
				case err == nil && existing.ID != user.ID:
					return store.ErrEmailExists
				case err != nil && !errors.Is(err, store.ErrUserNotFound):
					return err
				}
				user.Email = email
			}
		}

		user.UpdatedAt = s.now().UTC()
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, NewServiceError("user", "update_profile", "failed to update profile", err)
	}

	log.Info("profile updated", slog.String("user_id", userID.String()))
	return updated, nil
}

// ChangePassword implements UserService.
func (s *userServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if current == "" || next == "" {
		return domain.NewValidationError("password", PasswordsRequiredMessage, domain.ErrInvalidPassword)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return NewServiceError("user", "change_password", "failed to load user", err)
	}
	if err := s.hasher.Compare(user.HashedPassword, current); err != nil {
		return ErrIncorrectPassword
	}
	if len(next) < domain.MinPasswordLength {
		return domain.NewValidationError("new_password", NewPasswordLengthMessage, domain.ErrInvalidPassword)
	}
	if err := domain.ValidatePasswordLength("new_password", next); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(next)
	if err != nil {
		return NewServiceError("user", "change_password", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return NewServiceError("user", "change_password", "failed to store password", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("password changed", slog.String("user_id", userID.String()))
	return nil
}

// Deactivate implements UserService.
func (s *userServiceImpl) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return NewServiceError("user", "deactivate", "failed to load user", err)
	}

	user.IsActive = false
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return NewServiceError("user", "deactivate", "failed to deactivate user", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("account deactivated", slog.String("user_id", userID.String()))
	return nil
}
