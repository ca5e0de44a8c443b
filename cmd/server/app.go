package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/api"
	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/gemini"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/store"
)

// application holds the shared dependencies so they can be wired once and
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore     store.UserStore
	memoryStore   store.MemoryStore
	reminderStore store.ReminderStore

	jwtService          auth.JWTService
	authService         auth.AuthService
	userService         service.UserService
	memoryService       service.MemoryService
	reminderService     service.ReminderService
	subscriptionService service.SubscriptionService
	dashboardService    service.DashboardService
	insightService      service.InsightService

	eventEmitter *events.InMemoryEventEmitter
}

// newApplication wires stores, services and the event emitter. The database
// connection must already be open.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.memoryStore = postgres.NewPostgresMemoryStore(db, logger)
	app.reminderStore = postgres.NewPostgresReminderStore(db, logger)
	tx := store.NewSQLTransactor(db)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewActivityLogHandler(logger))

	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)

	app.authService, err = auth.NewAuthService(app.userStore, hasher, app.jwtService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	app.userService, err = service.NewUserService(tx, app.userStore, hasher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.memoryService, err = service.NewMemoryService(tx, app.userStore, app.memoryStore, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory service: %w", err)
	}

	app.reminderService, err = service.NewReminderService(
		tx, app.memoryStore, app.reminderStore, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder service: %w", err)
	}

	app.subscriptionService, err = service.NewSubscriptionService(
		tx, app.userStore, app.memoryStore, app.reminderStore, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription service: %w", err)
	}

	app.dashboardService, err = service.NewDashboardService(app.userStore, app.memoryStore, app.reminderStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard service: %w", err)
	}

	generator, err := newInsightGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	app.insightService, err = service.NewInsightService(app.userStore, app.memoryStore, generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create insight service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// newInsightGenerator returns nil when no Gemini key is configured, which
// leaves insights disabled.
func newInsightGenerator(
	ctx context.Context,
	cfg config.LLMConfig,
	logger *slog.Logger,
) (service.InsightGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Info("Gemini API key not set, memory insights disabled")
		return nil, nil
	}

	generator, err := gemini.NewInsightGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize insight generator: %w", err)
	}
	logger.Info("insight generator initialized", "model", cfg.ModelName)
	return generator, nil
}

// handlers builds the HTTP handlers over the application's services.
func (app *application) handlers() api.Handlers {
	cookies := api.NewSessionCookies(app.config.Auth)
	return api.Handlers{
		Auth:      api.NewAuthHandler(app.authService, cookies, app.logger),
		Memories:  api.NewMemoryHandler(app.memoryService, app.insightService, app.logger),
		Reminders: api.NewReminderHandler(app.reminderService, app.logger),
		Users: api.NewUserHandler(
			app.userService, app.subscriptionService, app.dashboardService, app.logger),
	}
}

// Run serves HTTP until ctx is cancelled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
