package migrations

import (
	"context"
	"fmt"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260901000003, down_20260901000003)
}

// up_20260901000003 creates submissions, votes and the generated image log
func up_20260901000003(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating submissions table...")
	_, err := db.NewCreateTable().
		Model((*models.Submission)(nil)).
		IfNotExists().
		ForeignKey(`(user_id) REFERENCES users(id) ON DELETE CASCADE`).
		ForeignKey(`(competition_id) REFERENCES competitions(id) ON DELETE SET NULL`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}
	if err := createIndexes(ctx, db,
		`CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_competition_id ON submissions(competition_id)`,
	); err != nil {
		return err
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating votes table...")
	_, err = db.NewCreateTable().
		Model((*models.Vote)(nil)).
		IfNotExists().
		ForeignKey(`(submission_id) REFERENCES submissions(id) ON DELETE CASCADE`).
		ForeignKey(`(voter_id) REFERENCES users(id) ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create votes table: %w", err)
	}
	if err := createIndexes(ctx, db,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_unique ON votes(submission_id, voter_id)`,
	); err != nil {
		return err
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating generated_images table...")
	_, err = db.NewCreateTable().
		Model((*models.GeneratedImage)(nil)).
		IfNotExists().
		ForeignKey(`(user_id) REFERENCES users(id) ON DELETE SET NULL`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create generated_images table: %w", err)
	}
	fmt.Println(" OK")

	return nil
}

func down_20260901000003(ctx context.Context, db *bun.DB) error {
	return dropTables(ctx, db, "generated_images", "votes", "submissions")
}
