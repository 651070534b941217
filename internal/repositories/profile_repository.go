package repositories

import (
	"errors"
	"time"

	"collabhub_backend/internal/models"

	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileFilter narrows the creator directory.
type ProfileFilter struct {
	Role         string // creator role category, empty = all
	Availability string
	Search       string // matches name, bio and skills
	Sort         string // rating (default), newest, reviews
	Page         int
	PageSize     int
}

type ProfileRepository interface {
	Create(profile *models.Profile) error
	FindByUserID(userID string) (*models.Profile, error)
	Update(profile *models.Profile) error
	UpdateAvatar(userID, avatarURL string) error

	// Search returns directory profiles, featured first, then by
	// rating. Only counts approved-review ratings (maintained by the
	// review repository).
	Search(filter ProfileFilter) ([]models.Profile, int64, error)

	// Admin toggles
	SetFeatured(userID string, featured bool) error
	SetVerified(userID string, verified bool) error
	SetPremium(userID string, premium bool) error

	CountAll() (int64, error)
	CountPremium() (int64, error)
	CountFeatured() (int64, error)
}

type ProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

func (r *ProfileRepositoryImpl) Create(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

func (r *ProfileRepositoryImpl) FindByUserID(userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) Update(profile *models.Profile) error {
	result := r.db.Model(&models.Profile{}).Where("user_id = ?", profile.UserID).Updates(map[string]interface{}{
		"name":            profile.Name,
		"role":            profile.Role,
		"skills":          profile.Skills,
		"bio":             profile.Bio,
		"portfolio_links": profile.PortfolioLinks,
		"availability":    profile.Availability,
		"updated_at":      time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepositoryImpl) UpdateAvatar(userID, avatarURL string) error {
	result := r.db.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"avatar_url": avatarURL,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepositoryImpl) Search(filter ProfileFilter) ([]models.Profile, int64, error) {
	query := r.db.Model(&models.Profile{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Availability != "" {
		query = query.Where("availability = ?", filter.Availability)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR bio ILIKE ? OR skills::text ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	// featured profiles lead regardless of the requested sort
	order := "is_featured DESC, rating DESC, created_at DESC"
	switch filter.Sort {
	case "newest":
		order = "is_featured DESC, created_at DESC"
	case "reviews":
		order = "is_featured DESC, review_count DESC, rating DESC"
	}

	var profiles []models.Profile
	err := query.
		Order(order).
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *ProfileRepositoryImpl) SetFeatured(userID string, featured bool) error {
	return r.setFlag(userID, "is_featured", featured)
}

func (r *ProfileRepositoryImpl) SetVerified(userID string, verified bool) error {
	return r.setFlag(userID, "is_verified", verified)
}

func (r *ProfileRepositoryImpl) SetPremium(userID string, premium bool) error {
	return r.setFlag(userID, "is_premium", premium)
}

func (r *ProfileRepositoryImpl) setFlag(userID, column string, value bool) error {
	result := r.db.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		column:       value,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepositoryImpl) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.Profile{}).Count(&count).Error
	return count, err
}

func (r *ProfileRepositoryImpl) CountPremium() (int64, error) {
	var count int64
	err := r.db.Model(&models.Profile{}).Where("is_premium = ?", true).Count(&count).Error
	return count, err
}

func (r *ProfileRepositoryImpl) CountFeatured() (int64, error) {
	var count int64
	err := r.db.Model(&models.Profile{}).Where("is_featured = ?", true).Count(&count).Error
	return count, err
}
