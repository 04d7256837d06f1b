package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
)

type PhotoRepository interface {
	Create(ctx context.Context, photo *entity.ProgressPhoto) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ProgressPhoto, error)
	// ListByUser returns the user's photos, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.ProgressPhoto, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type photoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) Create(ctx context.Context, photo *entity.ProgressPhoto) error {
	return r.db.WithContext(ctx).Omit("User").Create(photo).Error
}

func (r *photoRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ProgressPhoto, error) {
	var photo entity.ProgressPhoto
	if err := r.db.WithContext(ctx).First(&photo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *photoRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.ProgressPhoto, error) {
	var photos []entity.ProgressPhoto
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&photos).Error
	return photos, err
}

func (r *photoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.ProgressPhoto{}, "id = ?", id).Error
}
