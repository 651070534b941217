package models

// Review requires moderation: it is persisted unapproved and excluded from
// public listings (and rating aggregates) until an admin approves it.
type Review struct {
	BaseModel
	ReviewerID string `gorm:"not null;index;uniqueIndex:idx_reviewer_reviewee" json:"reviewer_id"`
	RevieweeID string `gorm:"not null;index;uniqueIndex:idx_reviewer_reviewee" json:"reviewee_id"`
	Rating     int    `gorm:"not null" json:"rating"` // 1-5
	Comment    string `gorm:"type:text" json:"comment"`
	IsApproved bool   `gorm:"default:false;index" json:"is_approved"`

	// Relations
	Reviewer *Profile `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
	Reviewee *Profile `gorm:"foreignKey:RevieweeID;references:UserID" json:"reviewee,omitempty"`
}
