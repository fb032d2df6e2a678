package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/uptrace/bun"
)

var (
	// ErrCompetitionFull is returned by Join when the roster is at capacity.
	ErrCompetitionFull = errors.New("competition is full")
	// ErrCompetitionNotOpen is returned by Join outside the start/end window.
	ErrCompetitionNotOpen = errors.New("competition is not open for joining")
)

// BunCompetitionRepository implements CompetitionRepository using Bun ORM
type BunCompetitionRepository struct {
	db bun.IDB
}

// NewBunCompetitionRepository creates a new Bun-based competition repository
func NewBunCompetitionRepository(db bun.IDB) *BunCompetitionRepository {
	return &BunCompetitionRepository{db: db}
}

// Create validates and inserts a competition
func (r *BunCompetitionRepository) Create(ctx context.Context, competition *models.Competition) error {
	if err := competition.ValidateForCreate(); err != nil {
		return fmt.Errorf("validate competition: %w", err)
	}
	if competition.ID == "" {
		competition.ID = bunx.NewUUIDv7()
	}
	if competition.Status == "" {
		competition.Status = models.CompetitionUpcoming
	}
	competition.StartTime = competition.StartTime.UTC()
	competition.EndTime = competition.EndTime.UTC()
	competition.CreatedAt = time.Now().UTC()

	_, err := r.db.NewInsert().
		Model(competition).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create competition: %w", err)
	}
	return nil
}

// GetByID retrieves a competition by ID
func (r *BunCompetitionRepository) GetByID(ctx context.Context, id string) (*models.Competition, error) {
	competition := new(models.Competition)
	err := r.db.NewSelect().
		Model(competition).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("competition %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}
	return competition, nil
}

// List returns all competitions ordered by start time
func (r *BunCompetitionRepository) List(ctx context.Context) ([]models.Competition, error) {
	var competitions []models.Competition
	err := r.db.NewSelect().
		Model(&competitions).
		Order("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return competitions, nil
}

// Join inserts a roster row and bumps current_participants in one transaction.
// The competition must be open at now.
func (r *BunCompetitionRepository) Join(ctx context.Context, competitionID, userID string, now time.Time) (*models.CompetitionParticipant, error) {
	now = now.UTC()
	participant := &models.CompetitionParticipant{
		ID:            bunx.NewUUIDv7(),
		CompetitionID: competitionID,
		UserID:        userID,
		JoinedAt:      now,
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		competition := new(models.Competition)
		if err := tx.NewSelect().Model(competition).Where("id = ?", competitionID).Scan(ctx); err != nil {
			if isNoRows(err) {
				return fmt.Errorf("competition %s: %w", competitionID, ErrNotFound)
			}
			return fmt.Errorf("get competition: %w", err)
		}
		if !competition.Open(now) {
			return fmt.Errorf("join competition %s: %w", competitionID, ErrCompetitionNotOpen)
		}

		if _, err := tx.NewInsert().Model(participant).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("join competition %s: %w", competitionID, ErrConflict)
			}
			return fmt.Errorf("insert participant: %w", err)
		}

		if competition.Full() {
			return fmt.Errorf("join competition %s: %w", competitionID, ErrCompetitionFull)
		}

		_, err := tx.NewUpdate().
			Model((*models.Competition)(nil)).
			Set("current_participants = current_participants + 1").
			Where("id = ?", competitionID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("increment participants: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

// Joined returns the competitions a user has joined
func (r *BunCompetitionRepository) Joined(ctx context.Context, userID string) ([]models.CompetitionParticipant, error) {
	var rows []models.CompetitionParticipant
	err := r.db.NewSelect().
		Model(&rows).
		Relation("Competition").
		Where("cp.user_id = ?", userID).
		Order("cp.joined_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list joined competitions: %w", err)
	}
	return rows, nil
}
