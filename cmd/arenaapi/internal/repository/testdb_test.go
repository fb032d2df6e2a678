package repository

import (
	"context"
	"testing"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/migrations"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// setupTestDB opens a private in-memory SQLite database with the schema applied
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := bunx.NewDB("file:" + bunx.NewUUIDv7() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { bunx.Close(db) })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}

// seedUser creates a user with a profile and returns the user ID
func seedUser(t *testing.T, db *bun.DB, email, role string) string {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Email: email, PasswordHash: "hash"}
	require.NoError(t, NewBunUserRepository(db).Create(ctx, user))

	profile := &models.Profile{UserID: user.ID, Username: email}
	if role != "" {
		profile.Role = &role
	}
	require.NoError(t, NewBunProfileRepository(db).Create(ctx, profile))
	return user.ID
}

func seedCompetition(t *testing.T, db *bun.DB, hostID, title string, start time.Time, max int) *models.Competition {
	t.Helper()
	c := &models.Competition{
		Title:           title,
		Description:     "desc",
		Theme:           "theme",
		StartTime:       start,
		EndTime:         start.Add(24 * time.Hour),
		MaxParticipants: max,
		CreatedBy:       hostID,
	}
	require.NoError(t, NewBunCompetitionRepository(db).Create(context.Background(), c))
	return c
}
