//go:build integration

package postgres_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/phrazzld/recall-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, tx *sql.Tx, now time.Time) *domain.User {
	t.Helper()

	user, err := domain.NewUser(uuid.NewString()+"@example.com", "Secret123", "Integration", now)
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = "$2a$10$integrationhashplaceholder"
	require.NoError(t, postgres.NewPostgresUserStore(tx, nil).Create(t.Context(), user))
	return user
}

func TestIntegration_UserStore(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)
		user := seedUser(t, tx, now)

		got, err := users.GetByEmail(t.Context(), user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, domain.SubscriptionFree, got.SubscriptionType)

		got.SubscriptionType = domain.SubscriptionPremium
		require.NoError(t, users.Update(t.Context(), got))
		reloaded, err := users.GetByID(t.Context(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionPremium, reloaded.SubscriptionType)

		_, err = users.GetByID(t.Context(), uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		// a unique violation aborts the transaction, so this runs last
		duplicate := *user
		duplicate.ID = uuid.New()
		assert.ErrorIs(t, users.Create(t.Context(), &duplicate), store.ErrEmailExists)
	})
}

func TestIntegration_MemoryStore(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		owner := seedUser(t, tx, now)
		other := seedUser(t, tx, now)
		memories := postgres.NewPostgresMemoryStore(tx, nil)

		for i, title := range []string{"Go generics", "Postgres indexes", "Grocery list"} {
			m, err := domain.NewMemory(owner.ID, title, "notes about "+title, "note",
				[]string{"seed"}, nil, now.Add(-time.Duration(i)*time.Hour))
			require.NoError(t, err)
			require.NoError(t, memories.Create(t.Context(), m))
		}

		items, total, err := memories.List(t.Context(), owner.ID,
			store.MemoryFilter{Search: "postgres"}, domain.NewPageRequest(1, 10))
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, "Postgres indexes", items[0].Title)
		assert.Equal(t, []string{"seed"}, items[0].Tags)

		_, err = memories.GetByID(t.Context(), other.ID, items[0].ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		count, err := memories.CountByUser(t.Context(), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		stats, err := memories.Stats(t.Context(), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 3, stats.TypeCounts[domain.MemoryTypeNote])

		recent, err := memories.Recent(t.Context(), owner.ID, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "Go generics", recent[0].Title)
	})
}

func TestIntegration_ReminderStore(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		owner := seedUser(t, tx, now)
		reminders := postgres.NewPostgresReminderStore(tx, nil)

		past := now.Add(-time.Hour)
		soon := now.Add(24 * time.Hour)
		for title, trigger := range map[string]*time.Time{"late": &past, "soon": &soon, "undated": nil} {
			r, err := domain.NewReminder(owner.ID, title, "", "deadline", trigger, "", nil, now)
			require.NoError(t, err)
			require.NoError(t, reminders.Create(t.Context(), r))
		}

		overdue, err := reminders.Overdue(t.Context(), owner.ID, now)
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		assert.Equal(t, "late", overdue[0].Title)

		upcoming, err := reminders.Between(t.Context(), owner.ID, now, now.Add(7*24*time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, upcoming, 1)
		assert.Equal(t, "soon", upcoming[0].Title)

		overdue[0].Complete(now)
		require.NoError(t, reminders.Update(t.Context(), overdue[0]))

		n, err := reminders.CountOverdue(t.Context(), owner.ID, now)
		require.NoError(t, err)
		assert.Zero(t, n)

		_, total, err := reminders.List(t.Context(), owner.ID,
			store.ReminderFilter{Status: domain.ReminderStatusPending, Now: now}, domain.NewPageRequest(1, 10))
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})
}
