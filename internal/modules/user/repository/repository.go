package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User, profile *entity.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindRoleByName(ctx context.Context, name string) (*entity.Role, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	UpdateGoogleID(ctx context.Context, id uuid.UUID, googleID string) error
	FindReminderRecipients(ctx context.Context, day time.Time) ([]entity.User, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts the user and its profile in one transaction.
func (r *userRepository) Create(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Create(user).Error; err != nil {
			return err
		}

		if profile == nil {
			profile = &entity.Profile{}
		}
		profile.UserID = user.ID
		if err := tx.Omit("House").Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile

		return nil
	})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "users.email = ?", email)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "users.username = ?", username)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "users.id = ?", id)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Profile").
		Preload("Profile.House").
		Where(query, arg).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}

	return &role, nil
}

func (r *userRepository) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UpdateGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("google_id", googleID).Error
}

// FindReminderRecipients returns active users who opted into reminders and
// have no activity dated day.
func (r *userRepository) FindReminderRecipients(ctx context.Context, day time.Time) ([]entity.User, error) {
	logged := r.db.Model(&entity.FitnessActivity{}).
		Select("user_id").
		Where("date = ?", day)

	var users []entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Where("users.is_active = ?", true).
		Where("profiles.email_reminders = ?", true).
		Where("users.id NOT IN (?)", logged).
		Order("users.username").
		Find(&users).Error
	return users, err
}
