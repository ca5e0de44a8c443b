package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/middleware"
	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/mocks"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testPassword = "Secret123"

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// testEnv wires the real services and router over in-memory stores.
type testEnv struct {
	router    http.Handler
	users     *mocks.MockUserStore
	memories  *mocks.MockMemoryStore
	reminders *mocks.MockReminderStore
	generator *mocks.MockInsightGenerator
	tokens    auth.JWTService
	cookies   SessionCookies
}

type envOption func(*envConfig)

type envConfig struct {
	insightsEnabled bool
}

func withoutInsights() envOption {
	return func(c *envConfig) { c.insightsEnabled = false }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := envConfig{insightsEnabled: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	authCfg := config.AuthConfig{
		JWTSecret:            "test-secret-that-is-at-least-32-characters",
		TokenLifetimeMinutes: 60,
		CookieName:           DefaultCookieName,
	}

	env := &testEnv{
		users:     mocks.NewMockUserStore(),
		memories:  mocks.NewMockMemoryStore(),
		reminders: mocks.NewMockReminderStore(),
		generator: &mocks.MockInsightGenerator{},
		cookies:   NewSessionCookies(authCfg),
	}

	var err error
	env.tokens, err = auth.NewJWTService(authCfg)
	require.NoError(t, err)

	tx := &mocks.MockTransactor{}
	clock := service.WithClock(func() time.Time { return testNow })

	authService, err := auth.NewAuthService(env.users, &mocks.MockPasswordHasher{}, env.tokens, log)
	require.NoError(t, err)
	memoryService, err := service.NewMemoryService(tx, env.users, env.memories, nil, log, clock)
	require.NoError(t, err)
	reminderService, err := service.NewReminderService(tx, env.memories, env.reminders, nil, log, clock)
	require.NoError(t, err)
	subscriptionService, err := service.NewSubscriptionService(
		tx, env.users, env.memories, env.reminders, nil, log, clock)
	require.NoError(t, err)
	dashboardService, err := service.NewDashboardService(env.users, env.memories, env.reminders, log, clock)
	require.NoError(t, err)
	userService, err := service.NewUserService(tx, env.users, &mocks.MockPasswordHasher{}, log, clock)
	require.NoError(t, err)

	var generator service.InsightGenerator
	if cfg.insightsEnabled {
		generator = env.generator
	}
	insightService, err := service.NewInsightService(env.users, env.memories, generator, log)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	RegisterRoutes(r, Handlers{
		Auth:      NewAuthHandler(authService, env.cookies, log),
		Memories:  NewMemoryHandler(memoryService, insightService, log),
		Reminders: NewReminderHandler(reminderService, log),
		Users:     NewUserHandler(userService, subscriptionService, dashboardService, log),
	}, middleware.NewAuthMiddleware(env.tokens, env.cookies.Name).Authenticate)
	env.router = r

	return env
}

// seedUser stores an active user with testPassword and returns it with a
// valid access token.
func (e *testEnv) seedUser(t *testing.T, email string, tier domain.SubscriptionType) (*domain.User, string) {
	t.Helper()

	user, err := domain.NewUser(email, testPassword, "Test User", testNow.Add(-48*time.Hour))
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = mocks.MockHash(testPassword)
	user.SubscriptionType = tier
	require.NoError(t, e.users.Create(t.Context(), user))

	token, err := e.tokens.GenerateToken(t.Context(), user.ID)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) seedMemory(t *testing.T, userID uuid.UUID, title string, age time.Duration) *domain.Memory {
	t.Helper()

	memory, err := domain.NewMemory(userID, title, "content of "+title, "note", []string{"seed"}, nil, testNow.Add(-age))
	require.NoError(t, err)
	require.NoError(t, e.memories.Create(t.Context(), memory))
	return memory
}

func (e *testEnv) seedReminder(t *testing.T, userID uuid.UUID, title string, trigger *time.Time) *domain.Reminder {
	t.Helper()

	reminder, err := domain.NewReminder(userID, title, "", "deadline", trigger, "", nil, testNow.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, e.reminders.Create(t.Context(), reminder))
	return reminder
}

// do sends a request through the router. body may be nil, a string of raw
// JSON or any value to encode. token, when set, travels in the cookie.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: e.cookies.Name, Value: token})
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBodyMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func decodeInto[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func at(offset time.Duration) *time.Time {
	t := testNow.Add(offset)
	return &t
}
