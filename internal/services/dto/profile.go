package dto

import (
	"time"

	"collabhub_backend/internal/models"
)

type UpdateProfileRequest struct {
	Name           string            `json:"name" validate:"required,min=2,max=100"`
	Role           string            `json:"role" validate:"required,is-creator-role"`
	Skills         []string          `json:"skills" validate:"max=20,dive,min=1,max=50"`
	Bio            string            `json:"bio" validate:"max=2000"`
	PortfolioLinks map[string]string `json:"portfolio_links" validate:"max=10"`
	Availability   string            `json:"availability_status" validate:"required,is-availability"`
}

type DirectorySearchRequest struct {
	Role         string `form:"role"`
	Availability string `form:"availability"`
	Search       string `form:"q"`
	Sort         string `form:"sort"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

type ProfileDTO struct {
	UserID         string            `json:"user_id"`
	Name           string            `json:"name"`
	Role           string            `json:"role"`
	Skills         []string          `json:"skills"`
	Bio            string            `json:"bio"`
	AvatarURL      string            `json:"avatar_url"`
	PortfolioLinks map[string]string `json:"portfolio_links"`
	Availability   string            `json:"availability_status"`
	IsPremium      bool              `json:"is_premium"`
	IsFeatured     bool              `json:"is_featured"`
	IsVerified     bool              `json:"is_verified"`
	Rating         float64           `json:"rating"`
	ReviewCount    int               `json:"review_count"`
	CreatedAt      time.Time         `json:"created_at"`
}

type DirectoryResponse struct {
	Profiles   []ProfileDTO `json:"profiles"`
	Pagination Pagination   `json:"pagination"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

func NewProfileDTO(p *models.Profile) ProfileDTO {
	return ProfileDTO{
		UserID:         p.UserID,
		Name:           p.Name,
		Role:           p.Role,
		Skills:         p.GetSkills(),
		Bio:            p.Bio,
		AvatarURL:      p.AvatarURL,
		PortfolioLinks: p.GetPortfolioLinks(),
		Availability:   string(p.Availability),
		IsPremium:      p.IsPremium,
		IsFeatured:     p.IsFeatured,
		IsVerified:     p.IsVerified,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		CreatedAt:      p.CreatedAt,
	}
}

func NewProfileDTOs(profiles []models.Profile) []ProfileDTO {
	out := make([]ProfileDTO, 0, len(profiles))
	for i := range profiles {
		out = append(out, NewProfileDTO(&profiles[i]))
	}
	return out
}
