package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunGeneratedImageRepository implements GeneratedImageRepository using Bun ORM
type BunGeneratedImageRepository struct {
	db bun.IDB
}

// NewBunGeneratedImageRepository creates a new Bun-based generated image repository
func NewBunGeneratedImageRepository(db bun.IDB) *BunGeneratedImageRepository {
	return &BunGeneratedImageRepository{db: db}
}

// Create records a generated image
func (r *BunGeneratedImageRepository) Create(ctx context.Context, image *models.GeneratedImage) error {
	if image.ID == "" {
		image.ID = bunx.NewUUIDv7()
	}
	image.CreatedAt = time.Now().UTC()

	if _, err := r.db.NewInsert().Model(image).Exec(ctx); err != nil {
		return fmt.Errorf("create generated image: %w", err)
	}
	return nil
}

// GetByID retrieves a generated image by ID
func (r *BunGeneratedImageRepository) GetByID(ctx context.Context, id string) (*models.GeneratedImage, error) {
	image := new(models.GeneratedImage)
	err := r.db.NewSelect().Model(image).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("generated image %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get generated image: %w", err)
	}
	return image, nil
}

// Recent returns the user's latest generated images
func (r *BunGeneratedImageRepository) Recent(ctx context.Context, userID string, limit int) ([]models.GeneratedImage, error) {
	var images []models.GeneratedImage
	err := r.db.NewSelect().
		Model(&images).
		Where("user_id = ?", userID).
		Order("created_at DESC", "id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list generated images: %w", err)
	}
	return images, nil
}
