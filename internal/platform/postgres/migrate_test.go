package postgres

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_memories.sql",
		"00003_create_reminders.sql",
	}, names)

	for _, name := range names {
		body, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+name)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(body), "-- +goose Up"), name)
		assert.True(t, strings.Contains(string(body), "-- +goose Down"), name)
	}
}

func TestCascadeDeclaredInSchema(t *testing.T) {
	memories, err := fs.ReadFile(migrationsFS, migrationsDir+"/00002_create_memories.sql")
	require.NoError(t, err)
	assert.Contains(t, string(memories), "REFERENCES users (id) ON DELETE CASCADE")

	reminders, err := fs.ReadFile(migrationsFS, migrationsDir+"/00003_create_reminders.sql")
	require.NoError(t, err)
	assert.Contains(t, string(reminders), "REFERENCES users (id) ON DELETE CASCADE")
	assert.Contains(t, string(reminders), "REFERENCES memories (id) ON DELETE SET NULL")
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	err := Migrate(context.Background(), nil, nil, "create", "add_table")
	assert.ErrorContains(t, err, "unsupported migration command")
	assert.True(t, ValidMigrationCommand("up"))
	assert.False(t, ValidMigrationCommand("fix"))
}
