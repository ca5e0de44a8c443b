package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

const (
	dashboardRecentMemories    = 5
	dashboardUpcomingReminders = 5
	dashboardUpcomingDays      = 7
)

// DashboardStats summarizes a user's data.
type DashboardStats struct {
	MemoryCount      int  `json:"memory_count"`
	ReminderCount    int  `json:"reminder_count"`
	OverdueReminders int  `json:"overdue_reminders"`
	MemoryLimit      *int `json:"memory_limit"`
}

// Dashboard is the landing-page aggregate. Recent memories have their
// content removed.
type Dashboard struct {
	User              *domain.User       `json:"user"`
	Stats             DashboardStats     `json:"stats"`
	RecentMemories    []*domain.Memory   `json:"recent_memories"`
	UpcomingReminders []*domain.Reminder `json:"upcoming_reminders"`
}

// DashboardService builds the dashboard aggregate.
type DashboardService interface {
	Get(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
}

type dashboardServiceImpl struct {
	users     store.UserStore
	memories  store.MemoryStore
	reminders store.ReminderStore
	now       func() time.Time
	logger    *slog.Logger
}

var _ DashboardService = (*dashboardServiceImpl)(nil)

// NewDashboardService creates a DashboardService.
// It returns an error if any of the required dependencies are nil.
func NewDashboardService(
	users store.UserStore,
	memories store.MemoryStore,
	reminders store.ReminderStore,
	logger *slog.Logger,
	opts ...Option,
) (DashboardService, error) {
	if users == nil || memories == nil || reminders == nil {
		return nil, &ServiceError{
			Service:   "dashboard",
			Operation: "create_service",
			Message:   "stores are required",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := buildOptions(opts)
	return &dashboardServiceImpl{
		users:     users,
		memories:  memories,
		reminders: reminders,
		now:       o.now,
		logger:    logger.With(slog.String("component", "dashboard_service")),
	}, nil
}

// Get implements DashboardService.
func (s *dashboardServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	now := s.now().UTC()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("dashboard", "get", "failed to load user", err)
	}

	memoryCount, err := s.memories.CountByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("dashboard", "get", "failed to count memories", err)
	}
	reminderCount, err := s.reminders.CountByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("dashboard", "get", "failed to count reminders", err)
	}
	overdue, err := s.reminders.CountOverdue(ctx, userID, now)
	if err != nil {
		return nil, NewServiceError("dashboard", "get", "failed to count overdue reminders", err)
	}

	recent, err := s.memories.Recent(ctx, userID, dashboardRecentMemories)
	if err != nil {
		return nil, NewServiceError("dashboard", "get", "failed to load recent memories", err)
	}
	for _, m := range recent {
		m.Content = ""
	}

	upcoming, err := s.reminders.Between(ctx, userID, now, now.AddDate(0, 0, dashboardUpcomingDays),
		dashboardUpcomingReminders)
	if err != nil {
		return nil, NewServiceError("dashboard", "get", "failed to load upcoming reminders", err)
	}
	for _, r := range upcoming {
		r.MarkOverdue(now)
	}

	return &Dashboard{
		User: user,
		Stats: DashboardStats{
			MemoryCount:      memoryCount,
			ReminderCount:    reminderCount,
			OverdueReminders: overdue,
			MemoryLimit:      domain.MemoryLimit(user.SubscriptionType),
		},
		RecentMemories:    nonNil(recent),
		UpcomingReminders: nonNil(upcoming),
	}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
