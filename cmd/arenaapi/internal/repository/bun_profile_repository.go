package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunProfileRepository implements ProfileRepository using Bun ORM
type BunProfileRepository struct {
	db bun.IDB
}

// NewBunProfileRepository creates a new Bun-based profile repository
func NewBunProfileRepository(db bun.IDB) *BunProfileRepository {
	return &BunProfileRepository{db: db}
}

// Create inserts a profile. ErrConflict if the user already has one.
func (r *BunProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = bunx.NewUUIDv7()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(profile).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create profile for %s: %w", profile.UserID, ErrConflict)
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// GetByUserID retrieves the profile owned by userID
func (r *BunProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	profile := new(models.Profile)
	err := r.db.NewSelect().
		Model(profile).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("profile for %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// Update writes the editable columns of a profile. Counters are owned by the
// vote and submission repositories and are not touched here.
func (r *BunProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model(profile).
		Column("username", "full_name", "institute_name", "bio", "role", "avatar_url", "updated_at").
		Where("user_id = ?", profile.UserID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("profile for %s: %w", profile.UserID, ErrNotFound)
	}
	return nil
}

// TopByVotes returns the highest-voted profiles
func (r *BunProfileRepository) TopByVotes(ctx context.Context, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.NewSelect().
		Model(&profiles).
		Order("votes_count DESC", "created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list top profiles: %w", err)
	}
	return profiles, nil
}
