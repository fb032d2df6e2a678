package migrations

import (
	"context"
	"testing"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/migrate"
)

func TestMigrations_UpAndDownOnSQLite(t *testing.T) {
	db, err := bunx.NewDB("file:migrations_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer bunx.Close(db)

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, Migrations)
	require.NoError(t, migrator.Init(ctx))

	group, err := migrator.Migrate(ctx)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)
	assert.Len(t, group.Migrations, 3)

	for _, table := range []string{
		"users", "sessions", "profiles",
		"competitions", "competition_participants",
		"submissions", "votes", "generated_images",
	} {
		var n int
		err := db.NewRaw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(ctx, &n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s", table)
	}

	// Applying again is a no-op.
	group, err = migrator.Migrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, group.ID)

	group, err = migrator.Rollback(ctx)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	var n int
	require.NoError(t, db.NewRaw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'").Scan(ctx, &n))
	assert.Zero(t, n)
}

func TestMigrations_UniqueVoteIndex(t *testing.T) {
	db, err := bunx.NewDB("file:migrations_unique_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer bunx.Close(db)

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES ('u1', 'a@b.c', 'x', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO submissions (id, user_id, prompt, image_url, votes_count, created_at) VALUES ('s1', 'u1', 'p', 'img', 0, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	insertVote := `INSERT INTO votes (id, submission_id, voter_id, created_at) VALUES (?, 's1', 'u1', CURRENT_TIMESTAMP)`
	_, err = db.ExecContext(ctx, insertVote, "v1")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insertVote, "v2")
	assert.Error(t, err, "second vote by the same voter must violate the unique index")
}
