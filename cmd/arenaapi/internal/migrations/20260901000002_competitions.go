package migrations

import (
	"context"
	"fmt"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260901000002, down_20260901000002)
}

// up_20260901000002 creates competitions and their participant roster
func up_20260901000002(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating competitions table...")
	_, err := db.NewCreateTable().
		Model((*models.Competition)(nil)).
		IfNotExists().
		ForeignKey(`(created_by) REFERENCES users(id)`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create competitions table: %w", err)
	}
	if err := createIndexes(ctx, db,
		`CREATE INDEX IF NOT EXISTS idx_competitions_start_time ON competitions(start_time)`,
	); err != nil {
		return err
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating competition_participants table...")
	_, err = db.NewCreateTable().
		Model((*models.CompetitionParticipant)(nil)).
		IfNotExists().
		ForeignKey(`(competition_id) REFERENCES competitions(id) ON DELETE CASCADE`).
		ForeignKey(`(user_id) REFERENCES users(id) ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create competition_participants table: %w", err)
	}
	// One row per (competition, user); a second join attempt is a conflict.
	if err := createIndexes(ctx, db,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_competition_participants_unique ON competition_participants(competition_id, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_competition_participants_user_id ON competition_participants(user_id)`,
	); err != nil {
		return err
	}
	fmt.Println(" OK")

	return nil
}

func down_20260901000002(ctx context.Context, db *bun.DB) error {
	return dropTables(ctx, db, "competition_participants", "competitions")
}
