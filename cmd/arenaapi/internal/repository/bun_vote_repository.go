package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunVoteRepository implements VoteRepository using Bun ORM
type BunVoteRepository struct {
	db bun.IDB
}

// NewBunVoteRepository creates a new Bun-based vote repository
func NewBunVoteRepository(db bun.IDB) *BunVoteRepository {
	return &BunVoteRepository{db: db}
}

// Toggle flips the voter's vote on a submission inside a transaction
func (r *BunVoteRepository) Toggle(ctx context.Context, submissionID, voterID string) (bool, int, error) {
	var (
		voted bool
		votes int
	)

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		submission := new(models.Submission)
		if err := tx.NewSelect().Model(submission).Where("id = ?", submissionID).Scan(ctx); err != nil {
			if isNoRows(err) {
				return fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
			}
			return fmt.Errorf("get submission: %w", err)
		}

		res, err := tx.NewDelete().
			Model((*models.Vote)(nil)).
			Where("submission_id = ?", submissionID).
			Where("voter_id = ?", voterID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete vote: %w", err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}

		delta := -1
		if removed == 0 {
			vote := &models.Vote{
				ID:           bunx.NewUUIDv7(),
				SubmissionID: submissionID,
				VoterID:      voterID,
				CreatedAt:    time.Now().UTC(),
			}
			if _, err := tx.NewInsert().Model(vote).Exec(ctx); err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("vote on %s: %w", submissionID, ErrConflict)
				}
				return fmt.Errorf("insert vote: %w", err)
			}
			delta = 1
		}

		if _, err := tx.NewUpdate().
			Model((*models.Submission)(nil)).
			Set("votes_count = votes_count + ?", delta).
			Where("id = ?", submissionID).
			Exec(ctx); err != nil {
			return fmt.Errorf("update submission votes: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*models.Profile)(nil)).
			Set("votes_count = votes_count + ?", delta).
			Where("user_id = ?", submission.UserID).
			Exec(ctx); err != nil {
			return fmt.Errorf("update author votes: %w", err)
		}

		voted = delta > 0
		votes = submission.VotesCount + delta
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return voted, votes, nil
}

// HasVoted reports whether voterID currently has a vote on submissionID
func (r *BunVoteRepository) HasVoted(ctx context.Context, submissionID, voterID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.Vote)(nil)).
		Where("submission_id = ?", submissionID).
		Where("voter_id = ?", voterID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return exists, nil
}
