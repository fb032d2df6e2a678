package migrations

import (
	"context"
	"fmt"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260901000001, down_20260901000001)
}

// up_20260901000001 creates users, sessions and profiles
func up_20260901000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating users table...")
	_, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating sessions table...")
	_, err = db.NewCreateTable().
		Model((*models.Session)(nil)).
		IfNotExists().
		ForeignKey(`(user_id) REFERENCES users(id) ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	if err := createIndexes(ctx, db,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
	); err != nil {
		return err
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating profiles table...")
	_, err = db.NewCreateTable().
		Model((*models.Profile)(nil)).
		IfNotExists().
		ForeignKey(`(user_id) REFERENCES users(id) ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create profiles table: %w", err)
	}
	if err := createIndexes(ctx, db,
		`CREATE INDEX IF NOT EXISTS idx_profiles_votes_count ON profiles(votes_count DESC)`,
	); err != nil {
		return err
	}
	fmt.Println(" OK")

	return nil
}

// down_20260901000001 drops account tables in reverse order
func down_20260901000001(ctx context.Context, db *bun.DB) error {
	return dropTables(ctx, db, "profiles", "sessions", "users")
}
