package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	profileDto "octofit.app/tracker/internal/modules/profile/dto"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/logger"
	"octofit.app/tracker/pkg/storage"
)

const avatarFolder = "avatars"

var errStorageUnavailable = apperror.New(http.StatusServiceUnavailable, "image storage is not configured", apperror.ErrUnavailable)

type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) (*profileDto.ProfileResponse, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, avatar profileDto.AvatarFile) (*profileDto.ProfileResponse, error)
	SaveOnboarding(ctx context.Context, userID uuid.UUID, answers json.RawMessage) (*profileDto.ProfileResponse, error)
	SaveChecklist(ctx context.Context, userID uuid.UUID, input profileDto.SaveChecklistInput) (*profileDto.ChecklistResponse, error)
	GetChecklist(ctx context.Context, userID uuid.UUID) (*profileDto.ChecklistResponse, error)
}

type profileService struct {
	users        userRepo.UserRepository
	profiles     profileRepo.ProfileRepository
	imageStorage storage.ImageStorage
	sanitizer    *bluemonday.Policy
}

func NewProfileService(users userRepo.UserRepository, profiles profileRepo.ProfileRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		users:        users,
		profiles:     profiles,
		imageStorage: imageStorage,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	if user.Profile == nil {
		return nil, apperror.NotFound("profile not found")
	}
	return toProfileResponse(user), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) (*profileDto.ProfileResponse, error) {
	fields := map[string]any{}
	if input.Avatar != nil {
		fields["avatar"] = strings.TrimSpace(*input.Avatar)
	}
	if input.Bio != nil {
		fields["bio"] = s.clean(*input.Bio)
	}
	if input.Interests != nil {
		fields["interests"] = s.clean(*input.Interests)
	}
	if input.EmailReminders != nil {
		fields["email_reminders"] = *input.EmailReminders
	}
	if input.BotPersona != nil {
		persona := strings.ToLower(strings.TrimSpace(*input.BotPersona))
		if !validPersona(persona) {
			return nil, apperror.BadRequest("bot_persona must be one of arnold, jennifer, katy, mel")
		}
		fields["bot_persona"] = persona
	}

	if err := s.profiles.Update(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *profileService) UploadAvatar(ctx context.Context, userID uuid.UUID, avatar profileDto.AvatarFile) (*profileDto.ProfileResponse, error) {
	if s.imageStorage == nil {
		return nil, errStorageUnavailable
	}

	current, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}

	uploaded, err := s.imageStorage.UploadImage(ctx, avatar.Reader, avatarFolder, avatar.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return nil, errStorageUnavailable
		}
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	if err := s.profiles.Update(ctx, userID, map[string]any{"avatar": uploaded.URL}); err != nil {
		return nil, err
	}

	if old := current.Avatar; old != "" && old != uploaded.URL && storage.PublicIDFromURL(old) != "" {
		if err := s.imageStorage.DeleteImage(ctx, old); err != nil {
			logger.L().Warn("failed to delete previous avatar", zap.String("url", old), zap.Error(err))
		}
	}

	return s.GetProfile(ctx, userID)
}

func (s *profileService) SaveOnboarding(ctx context.Context, userID uuid.UUID, answers json.RawMessage) (*profileDto.ProfileResponse, error) {
	trimmed := bytes.TrimSpace(answers)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, apperror.BadRequest("onboarding answers must be a JSON object")
	}

	if err := s.profiles.Update(ctx, userID, map[string]any{
		"onboarding_answers":  datatypes.JSON(trimmed),
		"onboarding_complete": true,
	}); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func (s *profileService) SaveChecklist(ctx context.Context, userID uuid.UUID, input profileDto.SaveChecklistInput) (*profileDto.ChecklistResponse, error) {
	if strings.TrimSpace(input.State) == "" {
		return nil, apperror.BadRequest("no state provided")
	}

	if _, err := s.profiles.FindByUserID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}

	if err := s.profiles.Update(ctx, userID, map[string]any{"checklist_state": input.State}); err != nil {
		return nil, fmt.Errorf("save checklist: %w", err)
	}
	return s.GetChecklist(ctx, userID)
}

func (s *profileService) GetChecklist(ctx context.Context, userID uuid.UUID) (*profileDto.ChecklistResponse, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}
	return &profileDto.ChecklistResponse{State: profile.ChecklistState}, nil
}

func (s *profileService) clean(v string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(v))
}

func validPersona(p string) bool {
	switch p {
	case entity.PersonaArnold, entity.PersonaJennifer, entity.PersonaKaty, entity.PersonaMel:
		return true
	}
	return false
}

func toProfileResponse(user *entity.User) *profileDto.ProfileResponse {
	p := user.Profile
	res := &profileDto.ProfileResponse{
		UserID:             user.ID,
		Username:           user.Username,
		FullName:           p.FullName,
		Avatar:             p.Avatar,
		Bio:                p.Bio,
		Interests:          p.Interests,
		StreakCount:        p.StreakCount,
		EmailReminders:     p.EmailReminders,
		BotPersona:         p.BotPersona,
		OnboardingComplete: p.OnboardingComplete,
	}
	if len(p.OnboardingAnswers) > 0 {
		res.OnboardingAnswers = json.RawMessage(p.OnboardingAnswers)
	}
	if p.House != nil {
		res.House = &profileDto.HouseSummary{
			ID:     p.House.ID,
			Name:   p.House.Name,
			Mascot: p.House.Mascot,
			Color:  p.House.Color,
			Points: p.House.Points,
		}
	}
	return res
}
