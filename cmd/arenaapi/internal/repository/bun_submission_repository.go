package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunSubmissionRepository implements SubmissionRepository using Bun ORM
type BunSubmissionRepository struct {
	db bun.IDB
}

// NewBunSubmissionRepository creates a new Bun-based submission repository
func NewBunSubmissionRepository(db bun.IDB) *BunSubmissionRepository {
	return &BunSubmissionRepository{db: db}
}

// Create inserts a submission and bumps the author's submissions_count
func (r *BunSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = bunx.NewUUIDv7()
	}
	submission.CreatedAt = time.Now().UTC()
	submission.VotesCount = 0

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(submission).Exec(ctx); err != nil {
			return fmt.Errorf("create submission: %w", err)
		}

		_, err := tx.NewUpdate().
			Model((*models.Profile)(nil)).
			Set("submissions_count = submissions_count + 1").
			Where("user_id = ?", submission.UserID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("increment submissions count: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a submission by ID with its author
func (r *BunSubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	submission := new(models.Submission)
	err := r.db.NewSelect().
		Model(submission).
		Relation("Author").
		Where("sub.id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("submission %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return submission, nil
}

// List returns the most recent (or oldest) submissions with their authors
func (r *BunSubmissionRepository) List(ctx context.Context, oldestFirst bool, limit int) ([]models.Submission, error) {
	order := "sub.created_at DESC"
	if oldestFirst {
		order = "sub.created_at ASC"
	}

	var submissions []models.Submission
	err := r.db.NewSelect().
		Model(&submissions).
		Relation("Author").
		Order(order, "sub.id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}
