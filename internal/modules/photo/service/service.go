package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	photoDto "octofit.app/tracker/internal/modules/photo/dto"
	photoRepo "octofit.app/tracker/internal/modules/photo/repository"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/logger"
	"octofit.app/tracker/pkg/storage"
)

const photoFolder = "progress_photos"

var errStorageUnavailable = apperror.New(http.StatusServiceUnavailable, "image storage is not configured", apperror.ErrUnavailable)

type PhotoService interface {
	Upload(ctx context.Context, userID uuid.UUID, photo photoDto.PhotoFile, input photoDto.UploadPhotoInput) (*photoDto.PhotoResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]photoDto.PhotoResponse, error)
	// Delete removes a photo owned by userID.
	Delete(ctx context.Context, userID, photoID uuid.UUID) error
}

type photoService struct {
	photos       photoRepo.PhotoRepository
	users        userRepo.UserRepository
	imageStorage storage.ImageStorage
	sanitizer    *bluemonday.Policy
}

// NewPhotoService accepts a nil imageStorage; uploads then fail with 503.
func NewPhotoService(photos photoRepo.PhotoRepository, users userRepo.UserRepository, imageStorage storage.ImageStorage) PhotoService {
	return &photoService{
		photos:       photos,
		users:        users,
		imageStorage: imageStorage,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

func (s *photoService) Upload(ctx context.Context, userID uuid.UUID, photo photoDto.PhotoFile, input photoDto.UploadPhotoInput) (*photoDto.PhotoResponse, error) {
	if s.imageStorage == nil {
		return nil, errStorageUnavailable
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	uploaded, err := s.imageStorage.UploadImage(ctx, photo.Reader, path.Join(photoFolder, user.Username), photo.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return nil, errStorageUnavailable
		}
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	row := &entity.ProgressPhoto{
		UserID:   userID,
		URL:      uploaded.URL,
		PublicID: uploaded.PublicID,
		Caption:  strings.TrimSpace(s.sanitizer.Sanitize(input.Caption)),
	}
	if err := s.photos.Create(ctx, row); err != nil {
		// Don't leave an orphan in storage.
		if derr := s.imageStorage.DeleteImage(ctx, uploaded.PublicID); derr != nil {
			logger.L().Warn("failed to remove orphaned photo", zap.String("public_id", uploaded.PublicID), zap.Error(derr))
		}
		return nil, err
	}

	res := toPhotoResponse(*row)
	return &res, nil
}

func (s *photoService) List(ctx context.Context, userID uuid.UUID) ([]photoDto.PhotoResponse, error) {
	photos, err := s.photos.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]photoDto.PhotoResponse, 0, len(photos))
	for _, p := range photos {
		res = append(res, toPhotoResponse(p))
	}
	return res, nil
}

func (s *photoService) Delete(ctx context.Context, userID, photoID uuid.UUID) error {
	photo, err := s.photos.FindByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("photo not found")
		}
		return err
	}
	if photo.UserID != userID {
		return apperror.New(http.StatusForbidden, "you can only delete your own photos", apperror.ErrForbidden)
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		return err
	}

	ref := photo.PublicID
	if ref == "" {
		ref = photo.URL
	}
	if s.imageStorage != nil {
		if err := s.imageStorage.DeleteImage(ctx, ref); err != nil {
			logger.L().Warn("failed to delete photo from storage", zap.String("photo_id", photoID.String()), zap.Error(err))
		}
	}
	return nil
}

func toPhotoResponse(p entity.ProgressPhoto) photoDto.PhotoResponse {
	return photoDto.PhotoResponse{
		ID:        p.ID,
		URL:       p.URL,
		Caption:   p.Caption,
		CreatedAt: p.CreatedAt,
	}
}
