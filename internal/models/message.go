package models

// Message is a single direct message. Conversations are derived from the
// flat table by grouping on the counterpart user.
type Message struct {
	BaseModel
	SenderID   string  `gorm:"not null;index" json:"sender_id"`
	ReceiverID string  `gorm:"not null;index" json:"receiver_id"`
	Content    string  `gorm:"type:text" json:"content"`
	FileURL    *string `json:"file_url,omitempty"`
	IsRead     bool    `gorm:"default:false" json:"is_read"`

	// Relations
	Sender *Profile `gorm:"foreignKey:SenderID;references:UserID" json:"sender,omitempty"`
}
