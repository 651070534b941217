package dto

import (
	"time"

	"collabhub_backend/internal/models"
)

type CreateReviewRequest struct {
	RevieweeID string `json:"reviewee_id" validate:"required,uuid4"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"required,min=3,max=2000"`
}

type ReviewDTO struct {
	ID         string     `json:"id"`
	ReviewerID string     `json:"reviewer_id"`
	RevieweeID string     `json:"reviewee_id"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment"`
	IsApproved bool       `json:"is_approved"`
	CreatedAt  time.Time  `json:"created_at"`
	Reviewer   *SenderDTO `json:"reviewer,omitempty"`
	Reviewee   *SenderDTO `json:"reviewee,omitempty"`
}

type ReviewListResponse struct {
	Reviews    []ReviewDTO `json:"reviews"`
	Pagination Pagination  `json:"pagination"`
}

func NewReviewDTO(r *models.Review) ReviewDTO {
	d := ReviewDTO{
		ID:         r.ID,
		ReviewerID: r.ReviewerID,
		RevieweeID: r.RevieweeID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		IsApproved: r.IsApproved,
		CreatedAt:  r.CreatedAt,
	}
	if r.Reviewer != nil {
		d.Reviewer = &SenderDTO{
			UserID:    r.Reviewer.UserID,
			Name:      r.Reviewer.Name,
			AvatarURL: r.Reviewer.AvatarURL,
			IsPremium: r.Reviewer.IsPremium,
		}
	}
	if r.Reviewee != nil {
		d.Reviewee = &SenderDTO{
			UserID:    r.Reviewee.UserID,
			Name:      r.Reviewee.Name,
			AvatarURL: r.Reviewee.AvatarURL,
			IsPremium: r.Reviewee.IsPremium,
		}
	}
	return d
}

func NewReviewDTOs(reviews []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(reviews))
	for i := range reviews {
		out = append(out, NewReviewDTO(&reviews[i]))
	}
	return out
}
