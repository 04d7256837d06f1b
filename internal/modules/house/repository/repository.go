package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
)

type HouseRepository interface {
	WithTx(tx *gorm.DB) HouseRepository
	List(ctx context.Context) ([]entity.House, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.House, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, name string) (*entity.House, error)
	ListChallenges(ctx context.Context, houseID uuid.UUID) ([]entity.HouseChallenge, error)
	ListAllChallenges(ctx context.Context) ([]entity.HouseChallenge, error)
	FindChallengeByID(ctx context.Context, id uuid.UUID) (*entity.HouseChallenge, error)
	// FindChallengeByDescription looks the description up across every house catalog.
	FindChallengeByDescription(ctx context.Context, description string) (*entity.HouseChallenge, error)
	SearchChallenges(ctx context.Context, query string, limit int) ([]entity.HouseChallenge, error)
	CreateChallenge(ctx context.Context, challenge *entity.HouseChallenge) error
	DeleteChallenge(ctx context.Context, id uuid.UUID) error
	ListBadges(ctx context.Context, houseID uuid.UUID) ([]entity.HouseBadge, error)
	CreateBadge(ctx context.Context, badge *entity.HouseBadge) error
	ListActivities(ctx context.Context, houseID uuid.UUID) ([]entity.HouseActivity, error)
	// AddPoints increments the house total atomically. n <= 0 is a no-op.
	AddPoints(ctx context.Context, houseID uuid.UUID, n int) error
	GetPoints(ctx context.Context, houseID uuid.UUID) (int, error)
	// MarkConfettiShown flips confetti_shown once and reports whether this call did it.
	MarkConfettiShown(ctx context.Context, houseID uuid.UUID) (bool, error)
}

type houseRepository struct {
	db *gorm.DB
}

func NewHouseRepository(db *gorm.DB) HouseRepository {
	return &houseRepository{db: db}
}

func (r *houseRepository) WithTx(tx *gorm.DB) HouseRepository {
	return &houseRepository{db: tx}
}

func (r *houseRepository) List(ctx context.Context) ([]entity.House, error) {
	var houses []entity.House
	err := r.db.WithContext(ctx).Order("name ASC").Find(&houses).Error
	return houses, err
}

func (r *houseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.House, error) {
	var house entity.House
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&house).Error; err != nil {
		return nil, err
	}
	return &house, nil
}

func (r *houseRepository) FindByName(ctx context.Context, name string) (*entity.House, error) {
	var house entity.House
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&house).Error; err != nil {
		return nil, err
	}
	return &house, nil
}

func (r *houseRepository) ListChallenges(ctx context.Context, houseID uuid.UUID) ([]entity.HouseChallenge, error) {
	var challenges []entity.HouseChallenge
	err := r.db.WithContext(ctx).
		Where("house_id = ?", houseID).
		Order("created_at ASC, description ASC").
		Find(&challenges).Error
	return challenges, err
}

func (r *houseRepository) ListAllChallenges(ctx context.Context) ([]entity.HouseChallenge, error) {
	var challenges []entity.HouseChallenge
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&challenges).Error
	return challenges, err
}

func (r *houseRepository) FindChallengeByID(ctx context.Context, id uuid.UUID) (*entity.HouseChallenge, error) {
	var challenge entity.HouseChallenge
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *houseRepository) FindChallengeByDescription(ctx context.Context, description string) (*entity.HouseChallenge, error) {
	var challenge entity.HouseChallenge
	if err := r.db.WithContext(ctx).
		Where("description = ?", description).
		Order("created_at ASC").
		First(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *houseRepository) SearchChallenges(ctx context.Context, query string, limit int) ([]entity.HouseChallenge, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	var challenges []entity.HouseChallenge
	err := r.db.WithContext(ctx).
		Where("LOWER(description) LIKE ? ESCAPE '!'", pattern).
		Order("description ASC").
		Limit(limit).
		Find(&challenges).Error
	return challenges, err
}

func (r *houseRepository) CreateChallenge(ctx context.Context, challenge *entity.HouseChallenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *houseRepository) DeleteChallenge(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.HouseChallenge{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *houseRepository) ListBadges(ctx context.Context, houseID uuid.UUID) ([]entity.HouseBadge, error) {
	var badges []entity.HouseBadge
	err := r.db.WithContext(ctx).
		Where("house_id = ?", houseID).
		Order("name ASC").
		Find(&badges).Error
	return badges, err
}

func (r *houseRepository) CreateBadge(ctx context.Context, badge *entity.HouseBadge) error {
	return r.db.WithContext(ctx).Create(badge).Error
}

func (r *houseRepository) ListActivities(ctx context.Context, houseID uuid.UUID) ([]entity.HouseActivity, error) {
	var activities []entity.HouseActivity
	err := r.db.WithContext(ctx).Where("house_id = ?", houseID).Find(&activities).Error
	return activities, err
}

func (r *houseRepository) AddPoints(ctx context.Context, houseID uuid.UUID, n int) error {
	if n <= 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.House{}).
		Where("id = ?", houseID).
		UpdateColumn("points", gorm.Expr("points + ?", n)).Error
}

func (r *houseRepository) GetPoints(ctx context.Context, houseID uuid.UUID) (int, error) {
	var points int
	err := r.db.WithContext(ctx).
		Model(&entity.House{}).
		Where("id = ?", houseID).
		Select("points").
		Scan(&points).Error
	return points, err
}

func (r *houseRepository) MarkConfettiShown(ctx context.Context, houseID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.House{}).
		Where("id = ? AND confetti_shown = ?", houseID, false).
		UpdateColumn("confetti_shown", true)
	return res.RowsAffected > 0, res.Error
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
