package services

import (
	"errors"
	"strings"

	"collabhub_backend/internal/email"
	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

type ReviewService interface {
	// Create submits a review. It lands unapproved and stays off the
	// profile until a moderator approves it.
	Create(reviewerID string, req *dto.CreateReviewRequest) (*dto.ReviewDTO, error)

	// ListForUser returns only approved reviews.
	ListForUser(revieweeID string, limit, offset int) (*dto.ReviewListResponse, error)

	// Moderation, admin only.
	ListPending(limit, offset int) (*dto.ReviewListResponse, error)
	Approve(reviewID string) (*dto.ReviewDTO, error)
	Reject(reviewID string) error
}

type ReviewServiceImpl struct {
	reviewRepo    repositories.ReviewRepository
	profileRepo   repositories.ProfileRepository
	emailProvider email.Provider
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	profileRepo repositories.ProfileRepository,
	emailProvider email.Provider,
) ReviewService {
	return &ReviewServiceImpl{
		reviewRepo:    reviewRepo,
		profileRepo:   profileRepo,
		emailProvider: emailProvider,
	}
}

func (s *ReviewServiceImpl) Create(reviewerID string, req *dto.CreateReviewRequest) (*dto.ReviewDTO, error) {
	if req.RevieweeID == reviewerID {
		return nil, apperrors.ErrSelfReviewNotAllowed
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.ErrInvalidReviewRating
	}

	if _, err := s.profileRepo.FindByUserID(req.RevieweeID); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("review", "Reviewee not found")
		}
		return nil, apperrors.InternalError(err)
	}

	review := &models.Review{
		ReviewerID: reviewerID,
		RevieweeID: req.RevieweeID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		IsApproved: false,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, repositories.ErrReviewAlreadyExists) {
			return nil, apperrors.ErrDuplicateReview
		}
		return nil, apperrors.InternalError(err)
	}

	d := dto.NewReviewDTO(review)
	return &d, nil
}

func (s *ReviewServiceImpl) ListForUser(revieweeID string, limit, offset int) (*dto.ReviewListResponse, error) {
	reviews, total, err := s.reviewRepo.FindApprovedForUser(revieweeID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.ReviewListResponse{
		Reviews: dto.NewReviewDTOs(reviews),
		Pagination: dto.Pagination{
			Page:     offset/max(limit, 1) + 1,
			PageSize: limit,
			Total:    total,
		},
	}, nil
}

func (s *ReviewServiceImpl) ListPending(limit, offset int) (*dto.ReviewListResponse, error) {
	reviews, total, err := s.reviewRepo.FindPending(limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.ReviewListResponse{
		Reviews: dto.NewReviewDTOs(reviews),
		Pagination: dto.Pagination{
			Page:     offset/max(limit, 1) + 1,
			PageSize: limit,
			Total:    total,
		},
	}, nil
}

func (s *ReviewServiceImpl) Approve(reviewID string) (*dto.ReviewDTO, error) {
	review, err := s.reviewRepo.Approve(reviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrReviewNotFound) {
			return nil, apperrors.NewNotFoundError("review", "Review not found")
		}
		return nil, apperrors.InternalError(err)
	}

	s.notifyReviewee(review)

	d := dto.NewReviewDTO(review)
	return &d, nil
}

func (s *ReviewServiceImpl) Reject(reviewID string) error {
	if err := s.reviewRepo.Delete(reviewID); err != nil {
		if errors.Is(err, repositories.ErrReviewNotFound) {
			return apperrors.NewNotFoundError("review", "Review not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ReviewServiceImpl) notifyReviewee(review *models.Review) {
	if s.emailProvider == nil {
		return
	}

	reviewee, err := s.profileRepo.FindByUserID(review.RevieweeID)
	if err != nil {
		return
	}
	reviewer, err := s.profileRepo.FindByUserID(review.ReviewerID)
	if err != nil {
		return
	}

	go func() {
		err := s.emailProvider.SendTemplate(
			[]string{reviewee.Email},
			"You received a new review",
			email.TemplateReviewApproved,
			email.TemplateData{
				"Name":         reviewee.Name,
				"ReviewerName": reviewer.Name,
				"Rating":       review.Rating,
				"Comment":      review.Comment,
			},
		)
		if err != nil {
			logger.WithError(err).Warn("failed to send review notification")
		}
	}()
}
