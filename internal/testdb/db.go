// Package testdb provides PostgreSQL helpers for integration tests. Tests
// that use it skip themselves when no database URL is configured.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds database setup operations.
const TestTimeout = 10 * time.Second

// URLEnvVars are checked in order for the test database URL.
var URLEnvVars = []string{"DATABASE_URL", "RECALL_TEST_DB_URL"}

// GetTestDatabaseURL returns the first non-empty value of URLEnvVars.
func GetTestDatabaseURL() string {
	for _, name := range URLEnvVars {
		if url := os.Getenv(name); url != "" {
			return url
		}
	}
	return ""
}

// GetTestDBWithT opens a migrated database connection and closes it when
// the test ends. The test is skipped when no database URL is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("DATABASE_URL or RECALL_TEST_DB_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open database connection")
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "database ping failed")

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, postgres.Migrate(ctx, db, quiet, "up"), "failed to apply migrations")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so each
// test sees a clean schema.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(t.Context(), nil)
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
