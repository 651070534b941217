package repositories

import (
	"errors"
	"time"

	"collabhub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this user")
)

type ReviewRepository interface {
	// Create inserts a pending review. The (reviewer, reviewee) pair
	// is unique; a second submission returns ErrReviewAlreadyExists.
	Create(review *models.Review) error
	FindByID(id string) (*models.Review, error)
	FindByReviewerAndReviewee(reviewerID, revieweeID string) (*models.Review, error)

	// FindApprovedForUser lists the reviews visible on a profile.
	FindApprovedForUser(revieweeID string, limit, offset int) ([]models.Review, int64, error)

	// Moderation queue
	FindPending(limit, offset int) ([]models.Review, int64, error)
	CountPending() (int64, error)

	// Approve publishes the review and recomputes the reviewee's
	// rating aggregate over approved reviews, in one transaction.
	Approve(reviewID string) (*models.Review, error)

	// Delete removes the review. If it was approved the reviewee's
	// aggregate is recomputed in the same transaction.
	Delete(reviewID string) error

	CountAll() (int64, error)
}

type ReviewRepositoryImpl struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &ReviewRepositoryImpl{db: db}
}

func (r *ReviewRepositoryImpl) Create(review *models.Review) error {
	var existing models.Review
	err := r.db.Where("reviewer_id = ? AND reviewee_id = ?", review.ReviewerID, review.RevieweeID).
		First(&existing).Error
	if err == nil {
		return ErrReviewAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// concurrent submissions can race past the pre-check; the unique
	// (reviewer_id, reviewee_id) index is the backstop
	if err := r.db.Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrReviewAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ReviewRepositoryImpl) FindByID(id string) (*models.Review, error) {
	var review models.Review
	err := r.db.Preload("Reviewer").Preload("Reviewee").First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindByReviewerAndReviewee(reviewerID, revieweeID string) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("reviewer_id = ? AND reviewee_id = ?", reviewerID, revieweeID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindApprovedForUser(revieweeID string, limit, offset int) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{}).
		Where("reviewee_id = ? AND is_approved = ?", revieweeID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit < 1 || limit > 100 {
		limit = 20
	}

	var reviews []models.Review
	err := query.Preload("Reviewer").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *ReviewRepositoryImpl) FindPending(limit, offset int) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{}).Where("is_approved = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit < 1 || limit > 100 {
		limit = 20
	}

	var reviews []models.Review
	err := query.Preload("Reviewer").Preload("Reviewee").
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *ReviewRepositoryImpl) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&models.Review{}).Where("is_approved = ?", false).Count(&count).Error
	return count, err
}

func (r *ReviewRepositoryImpl) Approve(reviewID string) (*models.Review, error) {
	var review models.Review
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		if review.IsApproved {
			// approving twice is a no-op
			return nil
		}

		if err := tx.Model(&review).Updates(map[string]interface{}{
			"is_approved": true,
			"updated_at":  time.Now(),
		}).Error; err != nil {
			return err
		}
		review.IsApproved = true

		return recomputeRating(tx, review.RevieweeID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) Delete(reviewID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		if err := tx.Delete(&review).Error; err != nil {
			return err
		}

		if review.IsApproved {
			return recomputeRating(tx, review.RevieweeID)
		}
		return nil
	})
}

func (r *ReviewRepositoryImpl) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.Review{}).Count(&count).Error
	return count, err
}

// recomputeRating refreshes the profile's rating aggregate from
// approved reviews only. Runs inside the caller's transaction so the
// review change and the aggregate never diverge.
func recomputeRating(tx *gorm.DB, revieweeID string) error {
	var stats struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("reviewee_id = ? AND is_approved = ?", revieweeID, true).
		Scan(&stats).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Profile{}).Where("user_id = ?", revieweeID).Updates(map[string]interface{}{
		"rating":       stats.Avg,
		"review_count": stats.Count,
		"updated_at":   time.Now(),
	}).Error
}
