package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// SubscriptionInfo describes a user's tier and usage.
type SubscriptionInfo struct {
	SubscriptionType domain.SubscriptionType `json:"subscription_type"`
	MemoryCount      int                     `json:"memory_count"`
	MemoryLimit      *int                    `json:"memory_limit"`
	ReminderCount    int                     `json:"reminder_count"`
	Features         domain.Features         `json:"features"`
}

// SubscriptionService applies the tier policy.
type SubscriptionService interface {
	Info(ctx context.Context, userID uuid.UUID) (*SubscriptionInfo, error)

	// Upgrade moves a free user to premium.
	Upgrade(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Downgrade moves a premium user to free when their memories fit the
	// free quota.
	Downgrade(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type subscriptionServiceImpl struct {
	tx        store.Transactor
	users     store.UserStore
	memories  store.MemoryStore
	reminders store.ReminderStore
	emitter   events.EventEmitter
	now       func() time.Time
	logger    *slog.Logger
}

var _ SubscriptionService = (*subscriptionServiceImpl)(nil)

// NewSubscriptionService creates a SubscriptionService.
// It returns an error if any of the required dependencies are nil.
func NewSubscriptionService(
	tx store.Transactor,
	users store.UserStore,
	memories store.MemoryStore,
	reminders store.ReminderStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) (SubscriptionService, error) {
	if tx == nil || users == nil || memories == nil || reminders == nil {
		return nil, &ServiceError{
			Service:   "subscription",
			Operation: "create_service",
			Message:   "transactor and stores are required",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := buildOptions(opts)
	return &subscriptionServiceImpl{
		tx:        tx,
		users:     users,
		memories:  memories,
		reminders: reminders,
		emitter:   emitter,
		now:       o.now,
		logger:    logger.With(slog.String("component", "subscription_service")),
	}, nil
}

// Info implements SubscriptionService.
func (s *subscriptionServiceImpl) Info(ctx context.Context, userID uuid.UUID) (*SubscriptionInfo, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("subscription", "info", "failed to load user", err)
	}
	memoryCount, err := s.memories.CountByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("subscription", "info", "failed to count memories", err)
	}
	reminderCount, err := s.reminders.CountByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("subscription", "info", "failed to count reminders", err)
	}

	return &SubscriptionInfo{
		SubscriptionType: user.SubscriptionType,
		MemoryCount:      memoryCount,
		MemoryLimit:      domain.MemoryLimit(user.SubscriptionType),
		ReminderCount:    reminderCount,
		Features:         domain.FeaturesFor(user.SubscriptionType),
	}, nil
}

// Upgrade implements SubscriptionService.
func (s *subscriptionServiceImpl) Upgrade(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.change(ctx, userID, domain.SubscriptionPremium, "upgrade", func(*sql.Tx, *domain.User) error {
		return nil
	})
}

// Downgrade implements SubscriptionService.
func (s *subscriptionServiceImpl) Downgrade(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.change(ctx, userID, domain.SubscriptionFree, "downgrade", func(tx *sql.Tx, user *domain.User) error {
		count, err := s.memories.WithTx(tx).CountByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if !domain.CanDowngrade(count) {
			return newDowngradeBlockedError(count)
		}
		return nil
	})
}

// change moves the user to target after check passes, all in one
// transaction.
func (s *subscriptionServiceImpl) change(
	ctx context.Context,
	userID uuid.UUID,
	target domain.SubscriptionType,
	operation string,
	check func(tx *sql.Tx, user *domain.User) error,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	var updated *domain.User
	var previous domain.SubscriptionType
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.SubscriptionType == target {
			message := AlreadyFreeMessage
			if target == domain.SubscriptionPremium {
				message = AlreadyPremiumMessage
			}
			return domain.NewValidationError("subscription_type", message, domain.ErrValidation)
		}
		if err := check(tx, user); err != nil {
			return err
		}

		previous = user.SubscriptionType
		user.SubscriptionType = target
		user.UpdatedAt = now.UTC()
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, NewServiceError("subscription", operation, "failed to change subscription", err)
	}

	log.Info("subscription changed",
		slog.String("user_id", userID.String()),
		slog.String("from", string(previous)),
		slog.String("to", string(target)))
	publish(ctx, s.emitter, s.logger, events.TypeSubscriptionChanged, userID, events.SubscriptionPayload{
		From: string(previous),
		To:   string(target),
	}, now)
	return updated, nil
}
