package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Profile is a user's public-facing record. One per user, created on
// sign-up or lazily on the first authenticated profile fetch.
type Profile struct {
	BaseModel
	UserID         string         `gorm:"uniqueIndex;not null" json:"user_id"`
	Email          string         `gorm:"not null" json:"email"`
	Name           string         `gorm:"not null" json:"name"`
	Role           string         `gorm:"type:varchar(30);not null;default:'Other'" json:"role"`
	Skills         datatypes.JSON `gorm:"type:jsonb" json:"skills"`          // ordered list of strings
	Bio            string         `gorm:"type:text" json:"bio"`
	AvatarURL      string         `json:"avatar_url"`
	PortfolioLinks datatypes.JSON `gorm:"type:jsonb" json:"portfolio_links"` // {"youtube": "...", ...}
	Availability   Availability   `gorm:"type:varchar(20);default:'available'" json:"availability_status"`
	IsPremium      bool           `gorm:"default:false" json:"is_premium"`
	IsFeatured     bool           `gorm:"default:false" json:"is_featured"`
	IsVerified     bool           `gorm:"default:false" json:"is_verified"`
	Rating         float64        `gorm:"default:0" json:"rating"`
	ReviewCount    int            `gorm:"default:0" json:"review_count"`
}

// GetSkills returns the skill list as a slice of strings.
func (p *Profile) GetSkills() []string {
	var skills []string
	if len(p.Skills) > 0 {
		_ = json.Unmarshal(p.Skills, &skills)
	}
	return skills
}

// SetSkills stores the skill list preserving order.
func (p *Profile) SetSkills(skills []string) {
	data, _ := json.Marshal(skills)
	p.Skills = datatypes.JSON(data)
}

// GetPortfolioLinks returns portfolio links as a map.
func (p *Profile) GetPortfolioLinks() map[string]string {
	links := map[string]string{}
	if len(p.PortfolioLinks) > 0 {
		_ = json.Unmarshal(p.PortfolioLinks, &links)
	}
	return links
}

// SetPortfolioLinks stores portfolio links.
func (p *Profile) SetPortfolioLinks(links map[string]string) {
	data, _ := json.Marshal(links)
	p.PortfolioLinks = datatypes.JSON(data)
}
