package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/migrations"
)

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, migrations.Run(ctx, conn))

	for _, table := range []string{"members", "meetings", "meeting_attendees", "meeting_invited", "invitations", "outbox"} {
		var name string
		err := conn.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	t.Run("second run is a no-op", func(t *testing.T) {
		require.NoError(t, migrations.Run(ctx, conn))

		var count int
		require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
		assert.Equal(t, 1, count)
	})
}
